package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Terryzhang-jp/floorplan-label-maker/config"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-resty/resty/v2"
	"golang.org/x/term"
)

var (
	geminiModelsURL = "https://generativelanguage.googleapis.com/v1beta/models"
	openaiModelsURL = "https://api.openai.com/v1/models"
)

var validationClient = resty.New().SetDebug(false).SetTimeout(10 * time.Second)

// isInteractiveTerminal returns true if both stdin and stdout are TTYs.
func isInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// selectedProvider returns the provider from the environment, defaulting to Gemini.
func selectedProvider() string {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("FLOORPLAN_PROVIDER")))
	if provider == "" {
		return config.ProviderGemini
	}
	return provider
}

func credentialEnvVar(provider string) string {
	return config.Config{Provider: provider}.CredentialEnvVar()
}

// needsSetup reports whether the credential is missing and we can ask for it.
func needsSetup() bool {
	key := os.Getenv(credentialEnvVar(selectedProvider()))
	return config.IsPlaceholder(key) && isInteractiveTerminal()
}

// runSetupWizard asks for the provider and its API key, validates the key
// and saves it to the user config file. Returns true if setup succeeded.
func runSetupWizard() bool {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	fmt.Println()
	fmt.Println(titleStyle.Render("Floor Plan Analyzer - Setup"))
	fmt.Println()

	provider := selectedProvider()
	var apiKey string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Model provider").
				Options(
					huh.NewOption("Google Gemini", config.ProviderGemini),
					huh.NewOption("OpenAI", config.ProviderOpenAI),
				).
				Value(&provider),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("API Key").
				DescriptionFunc(func() string {
					if provider == config.ProviderOpenAI {
						return "Get yours at https://platform.openai.com/api-keys"
					}
					return "Get yours at https://aistudio.google.com/apikey"
				}, &provider).
				EchoMode(huh.EchoModePassword).
				Value(&apiKey).
				Validate(func(s string) error {
					if config.IsPlaceholder(s) {
						return errors.New("API key is required")
					}
					return validateAPIKey(context.Background(), provider, s)
				}),
		),
	).WithTheme(huh.ThemeBase16())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("\nSetup cancelled.")
			return false
		}
		fmt.Printf("\nError: %v\n", err)
		return false
	}

	values := map[string]string{
		"FLOORPLAN_PROVIDER":       provider,
		credentialEnvVar(provider): strings.TrimSpace(apiKey),
	}

	configPath, err := config.EnvFilePath()
	if err == nil {
		err = config.WriteEnvFile(configPath, values)
	}
	if err != nil {
		fmt.Printf("\nError saving configuration: %v\n", err)
		return false
	}

	// Set values in current process
	for k, v := range values {
		os.Setenv(k, v)
	}

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)

	pathStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	fmt.Println()
	fmt.Println(successStyle.Render("✓ Configuration saved"))
	fmt.Println(pathStyle.Render("  " + configPath))
	fmt.Println()

	return true
}

func validateAPIKey(ctx context.Context, provider, key string) error {
	if provider == config.ProviderOpenAI {
		return validateOpenAIKey(ctx, key)
	}
	return validateGeminiKey(ctx, key)
}

// validateGeminiKey validates a Gemini API key with the lightweight models
// list endpoint.
func validateGeminiKey(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var result struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	res, err := validationClient.R().
		SetContext(ctx).
		SetQueryParam("key", key).
		SetError(&result).
		Get(geminiModelsURL)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errors.New("connection timed out - check your internet")
		}
		return errors.New("connection failed - check your internet")
	}

	return checkValidationResponse(res, result.Error.Message)
}

// validateOpenAIKey validates an OpenAI API key with the models endpoint.
func validateOpenAIKey(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var result struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	res, err := validationClient.R().
		SetContext(ctx).
		SetAuthToken(key).
		SetError(&result).
		Get(openaiModelsURL)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errors.New("connection timed out - check your internet")
		}
		return errors.New("connection failed - check your internet")
	}

	return checkValidationResponse(res, result.Error.Message)
}

func checkValidationResponse(res *resty.Response, message string) error {
	switch res.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		if message != "" {
			return errors.New(message)
		}
		return fmt.Errorf("API key rejected (HTTP %d)", res.StatusCode())
	default:
		return fmt.Errorf("unexpected response (HTTP %d)", res.StatusCode())
	}
}
