package cli

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const upgradeRepo = "varp-dev/varp"

var (
	upgradeForce bool
	upgradeQuiet bool
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Download and install the latest varp release",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpgrade(upgradeForce, upgradeQuiet)
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Restore the binary replaced by the last upgrade",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRollback()
	},
}

func init() {
	upgradeCmd.Flags().BoolVarP(&upgradeForce, "force", "f", false, "reinstall even if already on the latest version")
	upgradeCmd.Flags().BoolVarP(&upgradeQuiet, "quiet", "q", false, "suppress release notes")
	rootCmd.AddCommand(upgradeCmd, rollbackCmd)
}

// githubRelease holds the fields of the GitHub releases API response we need.
type githubRelease struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Body    string `json:"body"`
}

func runUpgrade(force, quiet bool) error {
	fmt.Printf("Checking for updates... (current version: %s)\n", Version)

	release, err := latestGitHubRelease()
	if err != nil {
		return fmt.Errorf("fetching latest release: %w", err)
	}

	if !force && strings.TrimPrefix(Version, "v") == strings.TrimPrefix(release.TagName, "v") {
		fmt.Printf("varp is already up to date (%s).\n", Version)
		return nil
	}

	fmt.Printf("Found new version: %s\n", release.TagName)
	if release.Body != "" && !quiet {
		fmt.Printf("\n=== What's new in %s ===\n%s\n\n", release.TagName, release.Body)
	}

	if runtime.GOOS != "darwin" && runtime.GOOS != "linux" {
		return fmt.Errorf("unsupported OS for automatic upgrade: %s", runtime.GOOS)
	}
	if runtime.GOARCH != "amd64" && runtime.GOARCH != "arm64" {
		return fmt.Errorf("unsupported architecture for automatic upgrade: %s", runtime.GOARCH)
	}
	platform := fmt.Sprintf("%s-%s", runtime.GOOS, runtime.GOARCH)

	tmpDir, err := os.MkdirTemp("", "varp-upgrade")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	downloadURL := fmt.Sprintf("https://github.com/%s/releases/download/%s/varp-%s.tar.gz", upgradeRepo, release.TagName, platform)
	fmt.Printf("Downloading from %s...\n", downloadURL)
	tarballPath := filepath.Join(tmpDir, "varp.tar.gz")
	if err := downloadFile(downloadURL, tarballPath); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	fmt.Println("Extracting...")
	binaryPath, err := extractBinary(tarballPath, tmpDir)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	realExe, err := resolveExecutable()
	if err != nil {
		return err
	}

	fmt.Printf("Installing to %s...\n", realExe)
	backupExe := realExe + ".old"
	if err := os.Rename(realExe, backupExe); err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("permission denied; re-run with sudo: sudo varp upgrade")
		}
		return fmt.Errorf("moving current binary aside: %w", err)
	}

	if err := copyFile(binaryPath, realExe); err != nil {
		os.Rename(backupExe, realExe)
		return fmt.Errorf("installing new binary: %w", err)
	}
	if err := os.Chmod(realExe, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to chmod new binary: %v\n", err)
	}

	fmt.Printf("\nBackup of previous version saved at: %s\n", backupExe)
	fmt.Println("To roll back: varp rollback")

	fmt.Println("\nVerifying installation...")
	out, err := exec.Command(realExe, "version").CombinedOutput()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to verify installation: %v\n", err)
	} else if installed := strings.TrimSpace(string(out)); strings.Contains(installed, release.TagName) {
		fmt.Printf("Verification successful: %s\n", installed)
	} else {
		fmt.Fprintf(os.Stderr, "verification failed: expected %s, got %s\n", release.TagName, installed)
		fmt.Fprintf(os.Stderr, "to restore the backup: sudo mv %s %s\n", backupExe, realExe)
		return fmt.Errorf("post-upgrade verification failed")
	}

	fmt.Printf("\nSuccessfully upgraded to %s\n", release.TagName)
	return nil
}

func runRollback() error {
	realExe, err := resolveExecutable()
	if err != nil {
		return err
	}
	backupExe := realExe + ".old"
	if _, err := os.Stat(backupExe); os.IsNotExist(err) {
		return fmt.Errorf("no backup found at %s; rollback is only possible after an upgrade", backupExe)
	}

	fmt.Println("Rolling back to previous version...")
	if out, err := exec.Command(backupExe, "version").CombinedOutput(); err == nil {
		fmt.Printf("Restoring: %s\n", strings.TrimSpace(string(out)))
	}

	failedExe := realExe + ".failed"
	if err := os.Rename(realExe, failedExe); err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("permission denied; re-run with sudo: sudo varp rollback")
		}
		return fmt.Errorf("moving current binary aside: %w", err)
	}
	if err := os.Rename(backupExe, realExe); err != nil {
		os.Rename(failedExe, realExe)
		return fmt.Errorf("restoring backup: %w", err)
	}

	fmt.Println("Rollback complete.")
	return nil
}

func resolveExecutable() (string, error) {
	currentExe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("determining executable path: %w", err)
	}
	realExe, err := filepath.EvalSymlinks(currentExe)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks: %w", err)
	}
	return realExe, nil
}

func latestGitHubRelease() (*githubRelease, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(fmt.Sprintf("https://api.github.com/repos/%s/releases/latest", upgradeRepo))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API returned %s", resp.Status)
	}
	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, err
	}
	return &release, nil
}

func downloadFile(url, dest string) error {
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %s", resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, resp.Body)
	return err
}

func extractBinary(tarballPath, destDir string) (string, error) {
	f, err := os.Open(tarballPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return "", err
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if filepath.Base(header.Name) != "varp" {
			continue
		}

		destPath := filepath.Join(destDir, "varp-new")
		outFile, err := os.Create(destPath)
		if err != nil {
			return "", err
		}
		if _, err := io.Copy(outFile, tr); err != nil {
			outFile.Close()
			return "", err
		}
		outFile.Close()
		os.Chmod(destPath, 0o755)
		return destPath, nil
	}
	return "", fmt.Errorf("binary 'varp' not found in archive")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
