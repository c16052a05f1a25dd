package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/autosense/senseboard/internal/api"
	"github.com/autosense/senseboard/internal/errors"
	"github.com/autosense/senseboard/internal/session"
	"github.com/autosense/senseboard/internal/ui"
)

// Login methods accepted by --method.
const (
	MethodPassword = "password"
	MethodOTP      = "otp"
	MethodGoogle   = "google"
	MethodRegister = "register"
)

// Credentials carries whatever the chosen login method needs.
type Credentials struct {
	Name       string
	Identifier string // email, or email/phone for OTP
	Password   string
	Code       string // OTP code
	IDToken    string // Google ID token
}

var (
	loginMethodFlag   string
	loginEmailFlag    string
	loginPasswordFlag string
	loginTokenFlag    string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Long: `Sign in to the AutoSense backend and save the session token.

Without flags an interactive form asks for the method and credentials.
The token is written to session.file (default ~/.config/senseboard/session.yaml).

Examples:
  senseboard login
  senseboard login --method otp --email me@example.com
  senseboard login --email me@example.com --password hunter2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return loginCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		guard, store := newGuard(cfg)
		return logout(cmd.OutOrStdout(), guard, store.Path())
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginMethodFlag, "method", "", "login method: password, otp, google, register")
	loginCmd.Flags().StringVar(&loginEmailFlag, "email", "", "email (or phone for otp)")
	loginCmd.Flags().StringVar(&loginPasswordFlag, "password", "", "password (prompted when omitted)")
	loginCmd.Flags().StringVar(&loginTokenFlag, "google-token", "", "Google ID token for --method google")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func loginCommand(ctx context.Context, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	guard, _ := newGuard(cfg)
	client, err := newClient(cfg, guard)
	if err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	method := strings.ToLower(loginMethodFlag)
	creds := Credentials{
		Identifier: loginEmailFlag,
		Password:   loginPasswordFlag,
		IDToken:    loginTokenFlag,
	}

	if method == "" {
		if interactive && creds.Identifier == "" && creds.IDToken == "" {
			if method, err = promptMethod(); err != nil {
				return err
			}
		} else if creds.IDToken != "" {
			method = MethodGoogle
		} else {
			method = MethodPassword
		}
	}
	if err := validateMethod(method); err != nil {
		return err
	}

	if interactive {
		if err := promptCredentials(method, &creds); err != nil {
			return err
		}
	}
	if err := checkCredentials(method, creds, false); err != nil {
		return err
	}

	if method == MethodOTP {
		mock, err := SendCode(ctx, client, creds.Identifier)
		if err != nil {
			return err
		}
		msg := "Code sent to " + creds.Identifier
		if mock != "" {
			msg += " (dev code " + mock + ")"
		}
		fmt.Fprintln(w, ui.InfoStyle().Render(msg))
		if interactive {
			if err := promptCode(&creds); err != nil {
				return err
			}
		}
		if err := checkCredentials(method, creds, true); err != nil {
			return err
		}
	}

	spinner := ui.NewSpinner(w, "Signing in to "+client.BaseURL())
	if interactive {
		spinner.Start()
	}
	token, username, err := Authenticate(ctx, client, method, creds)
	if err != nil {
		spinner.Fail(api.Message(err))
		return err
	}
	spinner.Success()

	if err := guard.SetSession(token); err != nil {
		return errors.WrapWithCode(err, errors.ErrSession,
			"Signed in, but the session could not be stored",
			"Check session.file in your config")
	}

	who := username
	if who == "" {
		who = creds.Identifier
	}
	ok := ui.SuccessStyle().Render(ui.SymbolSuccess)
	if who != "" {
		fmt.Fprintf(w, "%s Signed in as %s\n", ok, who)
	} else {
		fmt.Fprintf(w, "%s Signed in\n", ok)
	}
	return nil
}

// Authenticate runs the login exchange for method and returns the session
// token. Registration signs in with the new credentials right away. For
// OTP the code must already have been sent.
func Authenticate(ctx context.Context, client *api.Client, method string, creds Credentials) (token, username string, err error) {
	var res api.AuthResult
	switch method {
	case MethodPassword:
		res, err = client.Login(ctx, creds.Identifier, creds.Password)
	case MethodGoogle:
		res, err = client.GoogleLogin(ctx, creds.IDToken)
	case MethodOTP:
		res, err = client.VerifyOTP(ctx, creds.Identifier, creds.Code)
	case MethodRegister:
		res, err = client.Register(ctx, creds.Name, creds.Identifier, creds.Password)
		if err == nil && res.Token() == "" && (res.Success || res.Detail == "") {
			res, err = client.Login(ctx, creds.Identifier, creds.Password)
		}
	default:
		return "", "", validateMethod(method)
	}

	if ferr := authFailure(res, err); ferr != nil {
		return "", "", ferr
	}
	return res.Token(), res.Username, nil
}

// SendCode asks the backend for a one-time code. Development backends
// return the code itself, which is passed back as mock.
func SendCode(ctx context.Context, client *api.Client, identifier string) (mock string, err error) {
	res, err := client.SendOTP(ctx, identifier)
	if err != nil {
		return "", authFailure(res, err)
	}
	if !res.Success && res.MockOTP == "" {
		return "", authFailure(res, nil)
	}
	return res.MockOTP, nil
}

// authFailure turns a reply without a token into an AUTH error.
func authFailure(res api.AuthResult, err error) error {
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrAuth,
			"Sign-in failed: "+api.Message(err),
			"Check your credentials and that the backend is running")
	}
	if res.Token() != "" {
		return nil
	}
	reason := res.Detail
	if reason == "" {
		reason = res.Message
	}
	if reason == "" {
		reason = "no token in the reply"
	}
	return errors.New(errors.ErrAuth,
		"Sign-in failed: "+reason,
		"Check your credentials and try again")
}

func validateMethod(method string) error {
	switch method {
	case MethodPassword, MethodOTP, MethodGoogle, MethodRegister:
		return nil
	}
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Unknown login method '%s'", method),
		"Use password, otp, google, or register")
}

// checkCredentials reports the first missing field for method. withCode
// asks for the OTP code as well.
func checkCredentials(method string, c Credentials, withCode bool) error {
	missing := func(what, flag string) error {
		return errors.New(errors.ErrAuth,
			what+" is required",
			"Pass "+flag+" or run 'senseboard login' in a terminal")
	}
	switch method {
	case MethodGoogle:
		if c.IDToken == "" {
			return missing("Google ID token", "--google-token")
		}
	case MethodOTP:
		if c.Identifier == "" {
			return missing("Email or phone", "--email")
		}
		if withCode && c.Code == "" {
			return missing("Code", "the code")
		}
	case MethodRegister:
		if c.Name == "" {
			return missing("Name", "the name")
		}
		fallthrough
	default:
		if c.Identifier == "" {
			return missing("Email", "--email")
		}
		if c.Password == "" {
			return missing("Password", "--password")
		}
	}
	return nil
}

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

func promptMethod() (string, error) {
	method := MethodPassword
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How do you want to sign in?").
				Options(
					huh.NewOption("Email and password", MethodPassword),
					huh.NewOption("One-time code", MethodOTP),
					huh.NewOption("Google ID token", MethodGoogle),
					huh.NewOption("Create an account", MethodRegister),
				).
				Value(&method),
		),
	)
	if err := form.Run(); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrAuth,
			"Login cancelled",
			"Run 'senseboard login' again when ready")
	}
	return method, nil
}

// promptCredentials asks only for fields not already given by flags.
func promptCredentials(method string, c *Credentials) error {
	var fields []huh.Field

	if method == MethodRegister && c.Name == "" {
		fields = append(fields, huh.NewInput().Title("Name").Value(&c.Name).Validate(required("name")))
	}
	switch method {
	case MethodGoogle:
		if c.IDToken == "" {
			fields = append(fields, huh.NewInput().
				Title("Google ID token").
				EchoMode(huh.EchoModePassword).
				Value(&c.IDToken).
				Validate(required("token")))
		}
	case MethodOTP:
		if c.Identifier == "" {
			fields = append(fields, huh.NewInput().
				Title("Email or phone").
				Value(&c.Identifier).
				Validate(required("email or phone")))
		}
	default:
		if c.Identifier == "" {
			fields = append(fields, huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&c.Identifier).
				Validate(required("email")))
		}
		if c.Password == "" {
			fields = append(fields, huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&c.Password).
				Validate(required("password")))
		}
	}

	if len(fields) == 0 {
		return nil
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrAuth,
			"Login cancelled",
			"Run 'senseboard login' again when ready")
	}
	return nil
}

func promptCode(c *Credentials) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Code").
				Description("Enter the one-time code you received").
				Value(&c.Code).
				Validate(required("code")),
		),
	)
	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrAuth,
			"Login cancelled",
			"Run 'senseboard login' again when ready")
	}
	return nil
}

// logout clears the session and says where it was stored.
func logout(w io.Writer, guard *session.Guard, path string) error {
	had := guard.HasSession()
	guard.ClearSession()
	if !had {
		fmt.Fprintln(w, "Not signed in.")
		return nil
	}
	ok := ui.SuccessStyle().Render(ui.SymbolSuccess)
	fmt.Fprintf(w, "%s Signed out (removed %s)\n", ok, path)
	return nil
}
