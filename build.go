// build.go - babynames build script
// Usage: go run build.go [-target=TARGET]
// Targets: build, test, clean, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	module  = "github.com/toshiakit/string-vs-cell"
	binary  = "babynames"
	cmdPath = "./cmd/babynames"
)

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	Release bool
	GOOS    string
	GOARCH  string
}

var (
	rootDir string
	distDir string

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); os.IsNotExist(err) {
		panic(fmt.Sprintf("go.mod not found in %s. Run the build from the repository root.", rootDir))
	}
}

func main() {
	target := flag.String("target", "build", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	goos := flag.String("goos", runtime.GOOS, "Target operating system for release builds")
	goarch := flag.String("goarch", runtime.GOARCH, "Target architecture for release builds")
	flag.Parse()

	printHeader()

	startTime := time.Now()
	ctx := &BuildContext{
		Verbose: *verbose,
		GOOS:    *goos,
		GOARCH:  *goarch,
	}

	switch *target {
	case "build":
		buildBinary(ctx)
	case "test":
		runTests(ctx.Verbose)
	case "clean":
		clean(ctx.Verbose)
	case "release":
		ctx.Release = true
		buildRelease(ctx)
	default:
		showHelp()
		os.Exit(1)
	}

	duration := time.Since(startTime)
	printSuccess(fmt.Sprintf("Build completed in %s", duration.Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "        babynames - Build System           " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

// ldflags stamps build metadata into pkg/contracts.
func ldflags(release bool) string {
	flags := []string{
		fmt.Sprintf("-X %s/pkg/contracts.BuildTime=%s", module, time.Now().UTC().Format(time.RFC3339)),
	}
	if commit := gitCommit(); commit != "" {
		flags = append(flags, fmt.Sprintf("-X %s/pkg/contracts.GitCommit=%s", module, commit))
	}
	if release {
		flags = append([]string{"-s", "-w"}, flags...)
	}
	return strings.Join(flags, " ")
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func outputName(goos string) string {
	if goos == "windows" {
		return binary + ".exe"
	}
	return binary
}

func buildBinary(ctx *BuildContext) {
	printInfo(fmt.Sprintf("Building %s...", binary))

	if err := os.MkdirAll(distDir, 0755); err != nil {
		printError(fmt.Sprintf("Failed to create dist directory: %v", err))
		os.Exit(1)
	}

	outputPath := filepath.Join(distDir, outputName(ctx.GOOS))
	args := []string{"build"}
	if ctx.Verbose {
		args = append(args, "-v")
	}
	if ctx.Release {
		args = append(args, "-trimpath")
	}
	args = append(args, "-ldflags", ldflags(ctx.Release), "-o", outputPath, cmdPath)

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Env = append(os.Environ(), "GOOS="+ctx.GOOS, "GOARCH="+ctx.GOARCH)
	if ctx.Release {
		cmd.Env = append(cmd.Env, "CGO_ENABLED=0")
	}

	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", binary, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", filepath.Base(outputPath), sizeMB))
	}
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")

	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}

	printSuccess("All tests passed")
}

func clean(verbose bool) {
	printInfo("Cleaning build artifacts and logs...")

	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean dist directory: %v", err))
	}

	logs, _ := filepath.Glob(filepath.Join(rootDir, "logs", "*.log"))
	for _, f := range logs {
		if err := os.Remove(f); err != nil {
			printWarning(fmt.Sprintf("Could not remove %s: %v", f, err))
			continue
		}
		if verbose {
			fmt.Printf("  removed %s\n", f)
		}
	}

	printSuccess("Build artifacts cleaned")
}

func buildRelease(ctx *BuildContext) {
	printInfo(fmt.Sprintf("Building release version for %s/%s...", ctx.GOOS, ctx.GOARCH))

	clean(ctx.Verbose)
	buildBinary(ctx)

	versionFile := filepath.Join(distDir, "VERSION.txt")
	content := fmt.Sprintf("%s\nBuilt: %s\nTarget: %s/%s\n",
		binary, time.Now().Format("2006-01-02 15:04:05"), ctx.GOOS, ctx.GOARCH)
	if err := os.WriteFile(versionFile, []byte(content), 0644); err != nil {
		printWarning(fmt.Sprintf("Failed to write VERSION.txt: %v", err))
	}

	printSuccess("Release build completed")
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v] [-goos=OS] [-goarch=ARCH]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  build     Build the babynames CLI (default)")
	fmt.Println("  test      Run all tests with the race detector")
	fmt.Println("  clean     Remove build artifacts and log files")
	fmt.Println("  release   Build a stripped release binary")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -v        Verbose output")
	fmt.Println("  -goos     Target OS for the build")
	fmt.Println("  -goarch   Target architecture for the build")
}
