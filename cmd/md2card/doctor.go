package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-md2card/internal/config"
	"github.com/alnah/go-md2card/internal/vault"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo `json:"chrome"`
	Vault    vaultInfo  `json:"vault"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// vaultInfo holds vault detection results.
type vaultInfo struct {
	Root             string `json:"root"`
	Found            bool   `json:"found"`
	ConfigDir        bool   `json:"config_dir"`
	AttachmentFolder string `json:"attachment_folder"`
	MarkdownLinks    bool   `json:"markdown_links"`
	TemplateFolder   string `json:"template_folder,omitempty"`
	CardTag          string `json:"card_tag"`
	Cards            int    `json:"cards"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(f *commandFlags, env *Environment) int {
	result := runDoctor(f, env)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(f *commandFlags, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(result)
	checkVault(result, f, env)
	checkEnvironment(result)
	checkSystem(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	cmd := exec.Command(chromePath, "--version") // #nosec G204 -- browser path from launcher or ROD_BROWSER_BIN
	out, err := cmd.Output()
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkVault opens the vault and reads the host settings that affect cards.
func checkVault(result *doctorResult, f *commandFlags, env *Environment) {
	cfg, err := config.LoadOrDefault(f.common.config)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Config not loaded, using defaults: %v", err))
		cfg = config.DefaultConfig()
	}
	if f.common.vault != "" {
		cfg.Vault = f.common.vault
	}
	root := cfg.Vault
	if root == "" && env.Getwd != nil {
		root, _ = env.Getwd()
	}
	result.Vault.Root = root
	result.Vault.CardTag = cfg.CardTag

	v, err := vault.Open(root, vault.WithConfigDir(cfg.ConfigDir))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Vault not usable: %v", err))
		return
	}
	result.Vault.Found = true
	result.Vault.Root = v.Root()

	if info, err := os.Stat(filepath.Join(v.Root(), filepath.FromSlash(cfg.ConfigDir))); err == nil && info.IsDir() {
		result.Vault.ConfigDir = true
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("No %s folder in the vault; host settings use defaults", cfg.ConfigDir))
	}

	host := v.Host()
	result.Vault.AttachmentFolder = host.AttachmentFolder("")
	result.Vault.MarkdownLinks = host.UseMarkdownLinks()
	if folder, ok := host.TemplateFolder(); ok {
		result.Vault.TemplateFolder = folder
	}

	meta, err := vault.NewMetadataCache(v, cfg.Keys, vault.DefaultCacheSize)
	if err != nil {
		return
	}
	notes, err := v.List(context.Background())
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not list notes: %v", err))
		return
	}
	for _, p := range notes {
		note, err := meta.Get(p)
		if err == nil && note.Fields.HasTag(cfg.CardTag) {
			result.Vault.Cards++
		}
	}
	if result.Vault.Cards == 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("No notes tagged #%s", cfg.CardTag))
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("MD2CARD_CONTAINER") == "1" {
		return true, "MD2CARD_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory, which holds render pages and
// batch locks, is writable.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "md2card-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "md2card doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Vault")
	if r.Vault.Found {
		fmt.Fprintf(w, "  [OK] Root: %s\n", r.Vault.Root)
		attachments := r.Vault.AttachmentFolder
		if attachments == "" {
			attachments = "(vault root)"
		}
		fmt.Fprintf(w, "  [OK] Attachments: %s\n", attachments)
		links := "wiki"
		if r.Vault.MarkdownLinks {
			links = "markdown"
		}
		fmt.Fprintf(w, "  [OK] Links: %s\n", links)
		if r.Vault.TemplateFolder != "" {
			fmt.Fprintf(w, "  [OK] Templates folder (skipped): %s\n", r.Vault.TemplateFolder)
		}
		fmt.Fprintf(w, "  [OK] Cards tagged #%s: %d\n", r.Vault.CardTag, r.Vault.Cards)
	} else {
		fmt.Fprintf(w, "  [ERROR] Not found: %s\n", r.Vault.Root)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to render")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
