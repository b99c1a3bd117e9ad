package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/appauth/pkg/keycodec"
)

func newCertCommand() *cobra.Command {
	certCmd := &cobra.Command{
		Use:   "cert",
		Short: "Inspect certificates",
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the subject, issuer, validity and key of a certificate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			cert, err := keycodec.ParseCertificate(string(data))
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Subject:    %s\n", cert.Subject)
			fmt.Fprintf(out, "Issuer:     %s\n", cert.Issuer)
			fmt.Fprintf(out, "Serial:     %s\n", cert.SerialNumber)
			fmt.Fprintf(out, "Not before: %s\n", cert.NotBefore.UTC().Format(time.RFC3339))
			fmt.Fprintf(out, "Not after:  %s\n", cert.NotAfter.UTC().Format(time.RFC3339))
			fmt.Fprintf(out, "Key:        %s", cert.PublicKeyAlgorithm)
			if material, err := keycodec.PublicKeyFromCertificate(cert); err == nil {
				fmt.Fprintf(out, " %d bits", material.Bits())
			}
			fmt.Fprintln(out)
			if time.Now().After(cert.NotAfter) {
				fmt.Fprintln(out, "Status:     EXPIRED")
			}
			return nil
		},
	}

	certCmd.AddCommand(inspectCmd)
	return certCmd
}
