package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type credentialOptions struct {
	Password string
}

func addCredentialArgs(cmd *cobra.Command, co *credentialOptions) {
	cmd.Flags().StringVarP(&co.Password, "password", "p", "",
		"Password; read from the terminal (or stdin) when omitted.")
}

func (co *credentialOptions) password(cmd *cobra.Command) (string, error) {
	if co.Password != "" {
		return co.Password, nil
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		return string(b), err
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func addLogin(topLevel *cobra.Command, o *rootOptions) {
	co := &credentialOptions{}

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and show today's habits",
		Example: `
habits login ann
echo secret | habits login ann
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			pw, err := co.password(cmd)
			if err != nil {
				return o.HandleError(out, err)
			}
			c, err := o.connect(cmd)
			if err != nil {
				return o.HandleError(out, err)
			}
			if err := c.engine.Login(cmd.Context(), args[0], pw); err != nil {
				return o.HandleError(out, err)
			}

			d := c.engine.Dashboard()
			if o.JSON {
				return o.printJSON(out, d)
			}
			p := printer{w: out}
			p.Line("Logged in as %s.", d.User)
			p.Dashboard(d)
			return nil
		},
	}
	addCredentialArgs(cmd, co)

	topLevel.AddCommand(cmd)
}

func addRegister(topLevel *cobra.Command, o *rootOptions) {
	co := &credentialOptions{}

	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Example: `
habits register ann
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			pw, err := co.password(cmd)
			if err != nil {
				return o.HandleError(out, err)
			}
			c, err := o.connect(cmd)
			if err != nil {
				return o.HandleError(out, err)
			}
			res, err := c.engine.Register(cmd.Context(), args[0], pw)
			if err != nil {
				return o.HandleError(out, err)
			}

			if o.JSON {
				return o.printJSON(out, res)
			}
			p := printer{w: out}
			if res.Authenticated {
				p.Line("%s. Logged in as %s.", strings.TrimSuffix(res.Message, "."), args[0])
				return nil
			}
			p.Line("%s. Now run `habits login %s`.", strings.TrimSuffix(res.Message, "."), args[0])
			return nil
		},
	}
	addCredentialArgs(cmd, co)

	topLevel.AddCommand(cmd)
}

func addLogout(topLevel *cobra.Command, o *rootOptions) {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget saved credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			c, err := o.connect(cmd)
			if err != nil {
				return o.HandleError(out, err)
			}
			c.engine.Logout(cmd.Context())
			if err := c.store.Clear(); err != nil {
				return o.HandleError(out, err)
			}

			if o.JSON {
				return o.printJSON(out, map[string]string{"message": "Logged out"})
			}
			printer{w: out}.Line("Logged out.")
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
