package output

import (
	"github.com/pterm/pterm"

	"github.com/jgoldverg/canopy/backend"
)

func VisualizeCredentialList(credList []*backend.SSHCredential) {
	for _, cred := range credList {
		pterm.Printfln("[%s]", cred.Name)
		pterm.Printfln("host = %s", cred.Addr())
		pterm.Printfln("username = %s", cred.Username)
		pterm.Printfln("uuid = %s", cred.UUID)
		if cred.PrivateKeyPath != "" {
			pterm.Printfln("private-key-path = %s", cred.PrivateKeyPath)
		}
		if cred.Password != "" {
			pterm.Printfln("password = %s", "********")
		}
		pterm.Println("")
	}
}
