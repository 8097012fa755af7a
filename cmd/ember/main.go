package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/samber/do"

	"ember/internal/config"
	"ember/internal/jit"
	"ember/internal/logging"
	"ember/internal/repl"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}

	args := parseOptions(cfg, os.Args[1:])
	setupLogging(cfg)

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.Provide(injector, func(i *do.Injector) (*jit.Session, error) {
		return jit.NewSession(os.Stdout), nil
	})
	do.Provide(injector, func(i *do.Injector) (*repl.REPL, error) {
		return repl.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*jit.Session](i),
			os.Stdout,
		), nil
	})

	command := "repl"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	switch command {
	case "repl":
		if err := do.MustInvoke[*repl.REPL](injector).Run(); err != nil {
			pterm.Error.Println(err.Error())
			os.Exit(1)
		}

	case "run":
		if len(args) != 1 {
			pterm.Error.Println("usage: ember run <file>")
			os.Exit(1)
		}
		if err := runFile(injector, cfg, args[0]); err != nil {
			fmt.Fprintln(os.Stderr, pterm.FgRed.Sprint(err.Error()))
			os.Exit(1)
		}

	case "version":
		fmt.Println("ember " + version)

	default:
		pterm.Error.Printfln("unknown command %q", command)
		usage()
		os.Exit(1)
	}
}

// parseOptions strips --opt=value and -I options from args, applying each
// to cfg, and returns what remains. Unknown options warn and are dropped.
func parseOptions(cfg *config.Config, args []string) []string {
	var rest []string
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "--playground="):
			cfg.Playground = strings.TrimPrefix(arg, "--playground=") == "true"
		case strings.HasPrefix(arg, "--logging="):
			cfg.Logging.Areas = strings.Split(strings.TrimPrefix(arg, "--logging="), ",")
		case strings.HasPrefix(arg, "--logging_priority="):
			cfg.Logging.Priority = strings.TrimPrefix(arg, "--logging_priority=")
		case strings.HasPrefix(arg, "--module_cache_path="):
			cfg.ModuleCachePath = strings.TrimPrefix(arg, "--module_cache_path=")
		case strings.HasPrefix(arg, "-I") && len(arg) > 2:
			cfg.SearchPaths = append(cfg.SearchPaths, arg[2:])
		case strings.HasPrefix(arg, "-"):
			pterm.Warning.Printfln("unknown option %s", arg)
		default:
			rest = append(rest, arg)
		}
	}
	return rest
}

func setupLogging(cfg *config.Config) {
	var areas logging.Area
	for _, name := range cfg.Logging.Areas {
		area, ok := logging.ParseArea(name)
		if !ok {
			pterm.Warning.Printfln("unknown logging area %q", name)
			continue
		}
		areas |= area
	}
	if areas == 0 {
		return
	}
	priority := logging.PriorityInfo
	if cfg.Logging.Priority != "" {
		p, ok := logging.ParsePriority(cfg.Logging.Priority)
		if !ok {
			pterm.Warning.Printfln("unknown logging priority %q", cfg.Logging.Priority)
		} else {
			priority = p
		}
	}
	logging.Setup(areas, priority)
}

// runFile executes a source file as a single turn with script semantics:
// redefinition is rejected the way the playground rejects it.
func runFile(injector *do.Injector, cfg *config.Config, path string) error {
	resolved, ok := cfg.ResolveFile(path)
	if !ok {
		return fmt.Errorf("cannot find %s", path)
	}
	src, err := os.ReadFile(resolved)
	if err != nil {
		return err
	}

	cfg.Playground = true
	r := repl.New(cfg, do.MustInvoke[*jit.Session](injector), os.Stdout)
	_, err = r.Controller().ExecuteLine(string(src))
	return err
}

func configPath() string {
	if path := os.Getenv("EMBER_CONFIG"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ember.toml"
	}
	return home + "/.ember.toml"
}

func usage() {
	fmt.Println("usage: ember [options] [repl|run <file>|version]")
	fmt.Println("  --playground=true|false   reject redefinition of existing symbols")
	fmt.Println("  --logging=ast,codegen,jit enable diagnostic areas")
	fmt.Println("  --logging_priority=info|warning|error")
	fmt.Println("  --module_cache_path=DIR   write per-module listings to DIR")
	fmt.Println("  -IDIR                     add DIR to the source search path")
}
