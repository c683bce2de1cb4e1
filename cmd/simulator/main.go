package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/seu-repo/appinventor-skill/internal/service/auth"
	"github.com/seu-repo/appinventor-skill/pkg/config"
)

var (
	serverURL     = flag.String("server", "http://localhost:8080/skill", "Skill endpoint URL")
	applicationID = flag.String("app-id", "amzn1.ask.skill.simulator", "Application ID sent in the session")
	locale        = flag.String("locale", "en-US", "Request locale")
	userID        = flag.String("user", "amzn1.ask.account.simulator", "User ID sent in the session")
	appName       = flag.String("name", "", "App name for a scripted dialogue")
	description   = flag.String("description", "", "App description for a scripted dialogue")
	interactive   = flag.Bool("interactive", false, "Enable interactive mode")
	listReports   = flag.Bool("list-reports", false, "List recent reports from the admin API and exit")
	jwtSecret     = flag.String("jwt-secret", os.Getenv("JWT_SECRET"), "Secret used to mint an operator token for -list-reports")
	timeout       = flag.Duration("timeout", 10*time.Second, "Request timeout")
	verbose       = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	// Setup logger
	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *listReports {
		if err := printReports(logger); err != nil {
			logger.Fatal("Failed to list reports", zap.Error(err))
		}
		return
	}

	simulator := NewSimulator(&SimulatorConfig{
		ServerURL:     *serverURL,
		ApplicationID: *applicationID,
		Locale:        *locale,
		UserID:        *userID,
		Timeout:       *timeout,
	}, logger)

	if *interactive {
		runInteractiveMode(simulator)
		return
	}

	if err := runScript(simulator, *appName, *description); err != nil {
		logger.Fatal("Dialogue failed", zap.Error(err))
	}
}

func runInteractiveMode(sim *Simulator) {
	fmt.Println("\nApp Inventor Skill Simulator - Interactive Mode")
	fmt.Println("===============================================")
	fmt.Println("Commands:")
	fmt.Println("  launch             - Open the skill")
	fmt.Println("  name <text>        - Say the app name")
	fmt.Println("  describe <text>    - Describe the app")
	fmt.Println("  help               - Ask for help")
	fmt.Println("  say                - Say something the skill does not understand")
	fmt.Println("  stop               - Stop the skill")
	fmt.Println("  end                - End the session")
	fmt.Println("  new                - Start a new session")
	fmt.Println("  quit               - Exit simulator")
	fmt.Println("")
	fmt.Printf("Session %s\n", sim.SessionID())

	sim.RunInteractive(os.Stdin, os.Stdout)
}

// runScript plays launch, name and description as three separate turns.
func runScript(sim *Simulator, name, desc string) error {
	if name == "" || desc == "" {
		return fmt.Errorf("-name and -description are required unless -interactive or -list-reports is set")
	}

	fmt.Printf("Session %s\n", sim.SessionID())

	resp, err := sim.Launch()
	if err != nil {
		return err
	}
	Say(os.Stdout, resp)

	fmt.Printf("User: call the app %s\n", name)
	if resp, err = sim.CreateApp(name, ""); err != nil {
		return err
	}
	Say(os.Stdout, resp)

	fmt.Printf("User: create an app with %s\n", desc)
	if resp, err = sim.CreateApp("", desc); err != nil {
		return err
	}
	Say(os.Stdout, resp)
	return nil
}

func printReports(logger *zap.Logger) error {
	jwtService, err := auth.NewJWTService(config.JWTConfig{
		Secret:        *jwtSecret,
		TokenDuration: 5 * time.Minute,
		Issuer:        "appinventor-skill",
	}, logger)
	if err != nil {
		return err
	}
	token, err := jwtService.GenerateToken("simulator", auth.RoleOperator)
	if err != nil {
		return err
	}

	url := strings.TrimSuffix(*serverURL, "/skill") + "/api/v1/reports"

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Authorization", "Bearer "+token)

	if err := fasthttp.DoTimeout(req, resp, *timeout); err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("server answered %d: %s", resp.StatusCode(), resp.Body())
	}

	var out json.RawMessage = resp.Body()
	pretty, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))
	return nil
}
