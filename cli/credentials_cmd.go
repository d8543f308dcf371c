package cli

import (
	"errors"
	"os/user"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jgoldverg/canopy/backend"
	"github.com/jgoldverg/canopy/cli/output"
	"github.com/jgoldverg/canopy/internal"
)

type AddCredentialOpts struct {
	CredentialName string
	Username       string
	Host           string
	Port           int
	KeyPath        string
	Password       string
}

type DeleteCredentialOpts struct {
	CredentialName string
	CredentialUUID string
}

func CredentialCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "credential",
		Short:   "Manage stored SSH credentials",
		Aliases: []string{"creds", "c"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(AddCredentialCommand())
	cmd.AddCommand(ListCredentialCommand())
	cmd.AddCommand(DeleteCredentialCommand())
	return cmd
}

func AddCredentialCommand() *cobra.Command {
	var opts AddCredentialOpts

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an SSH credential to the credential store",
		Long:  "Add an SSH credential to the credential store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.CredentialName == "" {
				return errors.New("must specify a credential name")
			}
			if opts.Host == "" {
				return errors.New("must specify a host")
			}
			if opts.Username == "" {
				currentUser, err := user.Current()
				if err != nil {
					internal.Error("failed to get current user", internal.Fields{
						internal.FieldError: err.Error(),
					})
					return err
				}
				internal.Info("using current user for username", internal.Fields{
					internal.FieldCredential: currentUser.Username,
				})
				opts.Username = currentUser.Username
			}

			credential := &backend.SSHCredential{
				Name:           opts.CredentialName,
				Username:       opts.Username,
				Host:           opts.Host,
				Port:           opts.Port,
				PrivateKeyPath: opts.KeyPath,
				Password:       opts.Password,
				UUID:           uuid.New(),
			}
			if err := credential.Validate(); err != nil {
				return errors.New("failed to validate ssh credential: " + err.Error())
			}

			cfg := GetAppConfig(cmd)
			store, err := backend.NewTomlCredentialStorage(cfg.CredentialsFile)
			if err != nil {
				return err
			}
			if err := store.AddCredential(credential); err != nil {
				return err
			}
			internal.Info("credential added", internal.Fields{
				internal.FieldCredential: credential.Name,
				internal.FieldHost:       credential.Addr(),
				internal.CredentialPath:  cfg.CredentialsFile,
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.CredentialName, "name", "", "Credential name")
	cmd.Flags().StringVar(&opts.Host, "host", "", "Remote host")
	cmd.Flags().StringVar(&opts.Username, "username", "", "SSH username")
	cmd.Flags().StringVar(&opts.Password, "password", "", "SSH password")
	cmd.Flags().StringVar(&opts.KeyPath, "key-path", "", "Path to private key")
	cmd.Flags().IntVar(&opts.Port, "port", 22, "SSH port")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("host")
	return cmd
}

func ListCredentialCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "l"},
		Short:   "List credentials stored in the credential storage",
		Long:    "List credentials stored in the credential storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetAppConfig(cmd)
			store, err := backend.NewTomlCredentialStorage(cfg.CredentialsFile)
			if err != nil {
				return err
			}
			creds, err := store.ListCredentials()
			if err != nil {
				return errors.New("failed to list the stored credentials: " + err.Error())
			}
			if len(creds) == 0 {
				internal.Info("no credentials added", nil)
			}
			output.VisualizeCredentialList(creds)
			return nil
		},
	}

	return cmd
}

func DeleteCredentialCommand() *cobra.Command {
	var opts DeleteCredentialOpts

	cmd := &cobra.Command{
		Use:     "delete",
		Aliases: []string{"rm", "d"},
		Short:   "Delete a credential from the configured credential store path",
		Long:    "Delete a credential from the configured credential store path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.CredentialName == "" && opts.CredentialUUID == "" {
				return errors.New("must pass in either the credential name or the credential uuid")
			}

			cfg := GetAppConfig(cmd)
			store, err := backend.NewTomlCredentialStorage(cfg.CredentialsFile)
			if err != nil {
				return err
			}

			if opts.CredentialUUID != "" {
				parsed, err := uuid.Parse(opts.CredentialUUID)
				if err != nil {
					return errors.New("the credential uuid is not valid: " + err.Error())
				}
				return store.DeleteCredential(parsed)
			}
			return store.DeleteCredentialByName(opts.CredentialName)
		},
	}

	cmd.Flags().StringVar(&opts.CredentialName, "name", "", "The name of the stored credential")
	cmd.Flags().StringVar(&opts.CredentialUUID, "uuid", "", "The uuid assigned to the credential")

	return cmd
}
