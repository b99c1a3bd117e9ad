package cli

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/appauth/pkg/keycodec"
)

func newKeyCommand() *cobra.Command {
	keyCmd := &cobra.Command{
		Use:   "key",
		Short: "Inspect and convert RSA keys",
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the encoding, size and fingerprint of a PEM key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			material, err := keycodec.ParsePrivateKey(string(data))
			if err != nil {
				var pubErr error
				if material, pubErr = keycodec.ParsePublicKey(string(data)); pubErr != nil {
					return fmt.Errorf("%s is neither a private nor a public RSA key: %w", args[0], err)
				}
			}
			fingerprint, err := publicKeyFingerprint(material.PublicKey)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Encoding:    %s\n", material.Encoding)
			fmt.Fprintf(out, "Private:     %t\n", material.HasPrivateKey())
			fmt.Fprintf(out, "Bits:        %d\n", material.Bits())
			fmt.Fprintf(out, "Fingerprint: SHA256:%s\n", fingerprint)
			return nil
		},
	}

	convertCmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Rewrap a PKCS#1 private key as PKCS#8",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outPath, _ := cmd.Flags().GetString("out")

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			converted, err := convertPKCS1(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(converted)
				return err
			}
			if err := os.WriteFile(outPath, converted, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote PKCS#8 key to %s\n", outPath)
			return nil
		},
	}
	convertCmd.Flags().StringP("out", "o", "", "Write the converted key to this file instead of stdout")

	keyCmd.AddCommand(inspectCmd, convertCmd)
	return keyCmd
}

// convertPKCS1 rewraps an "RSA PRIVATE KEY" block and checks that the result parses.
func convertPKCS1(data []byte) ([]byte, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "RSA PRIVATE KEY" {
		return nil, fmt.Errorf("no PKCS#1 RSA PRIVATE KEY block found")
	}
	converted := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keycodec.WrapPKCS1AsPKCS8(block.Bytes)})
	if _, err := keycodec.ParsePrivateKey(string(converted)); err != nil {
		return nil, err
	}
	return converted, nil
}

func publicKeyFingerprint(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:]), nil
}
