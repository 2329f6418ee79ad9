// SPDX-License-Identifier: GPL-3.0-only
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bascanada/buildlog/pkg/config"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Interactive wizard to generate a configuration file",
	Long: `Launch an interactive wizard to help you create your first buildlog configuration.

This command guides you through setting up a build-log source (local file,
SSH, Kubernetes, Docker, or AWS CloudWatch) and generates a ready-to-use
config file.

Example:
  buildlog configure
  buildlog configure -c /path/to/config.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runConfigWizard(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

// wizardData holds everything collected across the wizard's forms, prior to
// being shaped into a config.Source.
type wizardData struct {
	sourceType string

	// local
	localPath   string
	localCmd    string
	localFollow bool

	// ssh
	sshAddr       string
	sshUser       string
	sshKey        string
	sshCmd        string
	sshDisablePTY bool

	// k8s
	kubeConfig string
	namespace  string
	pod        string
	container  string

	// docker
	dockerHost      string
	dockerContainer string

	// cloudwatch
	cwLogGroup  string
	cwLogStream string
	cwRegion    string
}

func resolveConfigPath(cfgPath string) (string, error) {
	if strings.TrimSpace(cfgPath) != "" {
		return cfgPath, nil
	}
	if envPath := strings.TrimSpace(os.Getenv(config.EnvConfigPath)); envPath != "" {
		return envPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, config.DefaultConfigDir, config.DefaultConfigFile), nil
}

func runConfigWizard(cfgPath string) error {
	var sourceName string
	wizData := &wizardData{}

	fmt.Println("Welcome to the buildlog configuration wizard!")
	fmt.Println()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where does this machine's emerge.log live?").
				Description("Select the kind of source to read build events from").
				Options(
					huh.NewOption("Local file", "local"),
					huh.NewOption("SSH (remote host)", "ssh"),
					huh.NewOption("Kubernetes pod", "k8s"),
					huh.NewOption("Docker container", "docker"),
					huh.NewOption("AWS CloudWatch Logs", "cloudwatch"),
				).
				Value(&wizData.sourceType),

			huh.NewInput().
				Title("Name for this source").
				Description("A friendly name to refer to this source by (e.g., laptop, build-server)").
				Placeholder("local").
				Value(&sourceName).
				Validate(func(str string) error {
					if strings.TrimSpace(str) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					if strings.ContainsAny(str, " \t\n") {
						return fmt.Errorf("name cannot contain whitespace")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	switch wizData.sourceType {
	case "local":
		if err := configureLocal(wizData); err != nil {
			return err
		}
	case "ssh":
		if err := configureSSH(wizData); err != nil {
			return err
		}
	case "k8s":
		if err := configureKubernetes(wizData); err != nil {
			return err
		}
	case "docker":
		if err := configureDocker(wizData); err != nil {
			return err
		}
	case "cloudwatch":
		if err := configureCloudWatch(wizData); err != nil {
			return err
		}
	}

	opts := buildSourceOptions(wizData)
	src := config.Source{Type: wizData.sourceType, Options: opts}

	targetPath, err := resolveConfigPath(cfgPath)
	if err != nil {
		return err
	}

	cfg := &config.Config{
		DefaultSource: sourceName,
		DefaultWindow: 10,
		Timezone:      "local",
		Sources:       config.Sources{},
	}
	// config.Load errors on an explicit path that doesn't exist, and when
	// no file is found at all it fills in an implicit "local" source, so the
	// only reliable signal that there's an existing config to merge into is
	// the target file actually existing on disk.
	if _, err := os.Stat(targetPath); err == nil {
		existing, err := config.Load(targetPath, nil)
		if err != nil {
			return fmt.Errorf("loading existing config at %s: %w", targetPath, err)
		}
		cfg.DefaultSource = existing.DefaultSource
		cfg.DefaultWindow = existing.DefaultWindow
		cfg.Timezone = existing.Timezone
		cfg.Sources = existing.Sources
	}

	if _, exists := cfg.Sources[sourceName]; exists {
		var overwrite bool
		overwriteForm := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("A source named %q already exists. Overwrite it?", sourceName)).
					Affirmative("Yes, overwrite").
					Negative("No, cancel").
					Value(&overwrite),
			),
		)
		if err := overwriteForm.Run(); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Configuration not saved. Run 'buildlog configure' again with a different name.")
			return nil
		}
	}
	cfg.Sources[sourceName] = src
	if cfg.DefaultSource == "" {
		cfg.DefaultSource = sourceName
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("generating YAML: %w", err)
	}

	fmt.Println("\n" + strings.Repeat("-", 60))
	fmt.Println("Generated configuration:")
	fmt.Println(strings.Repeat("-", 60))
	fmt.Println(string(out))
	fmt.Println(strings.Repeat("-", 60) + "\n")

	var confirm bool
	confirmForm := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Description(fmt.Sprintf("Target: %s", targetPath)).
				Affirmative("Yes, save it!").
				Negative("No, cancel").
				Value(&confirm),
		),
	)
	if err := confirmForm.Run(); err != nil {
		return err
	}
	if !confirm {
		fmt.Println("Configuration not saved. Run 'buildlog configure' again when ready.")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(targetPath, out, 0o644); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n\n", targetPath)
	fmt.Println("Try it now:")
	fmt.Printf("   buildlog history --source %s\n\n", sourceName)
	return nil
}

func configureLocal(w *wizardData) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Path to emerge.log").
				Placeholder("/var/log/emerge.log").
				Value(&w.localPath),
			huh.NewInput().
				Title("Command instead (optional)").
				Description("Leave empty to read the path above; otherwise a shell command whose stdout is the log").
				Value(&w.localCmd),
			huh.NewConfirm().
				Title("Follow the file for new lines (used by 'buildlog watch')?").
				Value(&w.localFollow),
		),
	)
	return form.Run()
}

func configureSSH(w *wizardData) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("SSH address").
				Placeholder("build-server:22").
				Value(&w.sshAddr),
			huh.NewInput().
				Title("SSH user").
				Value(&w.sshUser),
			huh.NewInput().
				Title("Private key path").
				Placeholder("~/.ssh/id_ed25519").
				Value(&w.sshKey),
			huh.NewInput().
				Title("Remote command").
				Description("Typically a tail of the remote emerge.log, e.g. tail -F /var/log/emerge.log").
				Placeholder("tail -F /var/log/emerge.log").
				Value(&w.sshCmd),
			huh.NewConfirm().
				Title("Disable PTY allocation?").
				Value(&w.sshDisablePTY),
		),
	)
	return form.Run()
}

func configureKubernetes(w *wizardData) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("kubeconfig path").
				Description("Leave empty to use the default kubeconfig resolution").
				Value(&w.kubeConfig),
			huh.NewInput().
				Title("Namespace").
				Value(&w.namespace),
			huh.NewInput().
				Title("Pod name").
				Value(&w.pod),
			huh.NewInput().
				Title("Container name").
				Description("Leave empty for the pod's only container").
				Value(&w.container),
		),
	)
	return form.Run()
}

func configureDocker(w *wizardData) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Docker host").
				Description("Leave empty for the default Unix socket").
				Placeholder("unix:///var/run/docker.sock").
				Value(&w.dockerHost),
			huh.NewInput().
				Title("Container name or ID").
				Value(&w.dockerContainer),
		),
	)
	return form.Run()
}

func configureCloudWatch(w *wizardData) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Log group").
				Value(&w.cwLogGroup),
			huh.NewInput().
				Title("Log stream").
				Value(&w.cwLogStream),
			huh.NewInput().
				Title("AWS region").
				Placeholder("us-east-1").
				Value(&w.cwRegion),
		),
	)
	return form.Run()
}

func buildSourceOptions(w *wizardData) map[string]string {
	opts := map[string]string{}
	switch w.sourceType {
	case "local":
		setIfNotEmpty(opts, "path", w.localPath)
		setIfNotEmpty(opts, "cmd", w.localCmd)
		if w.localFollow {
			opts["follow"] = "true"
		}
	case "ssh":
		setIfNotEmpty(opts, "addr", w.sshAddr)
		setIfNotEmpty(opts, "user", w.sshUser)
		setIfNotEmpty(opts, "privateKey", w.sshKey)
		setIfNotEmpty(opts, "cmd", w.sshCmd)
		if w.sshDisablePTY {
			opts["disablePTY"] = "true"
		}
	case "k8s":
		setIfNotEmpty(opts, "kubeConfig", w.kubeConfig)
		setIfNotEmpty(opts, "namespace", w.namespace)
		setIfNotEmpty(opts, "pod", w.pod)
		setIfNotEmpty(opts, "container", w.container)
	case "docker":
		setIfNotEmpty(opts, "host", w.dockerHost)
		setIfNotEmpty(opts, "container", w.dockerContainer)
	case "cloudwatch":
		setIfNotEmpty(opts, "logGroup", w.cwLogGroup)
		setIfNotEmpty(opts, "logStream", w.cwLogStream)
		setIfNotEmpty(opts, "region", w.cwRegion)
	}
	return opts
}

func setIfNotEmpty(m map[string]string, key, value string) {
	if value != "" {
		m[key] = value
	}
}
