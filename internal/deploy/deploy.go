// Package deploy runs the deployment pipeline for a profile: load,
// resolve credentials, transfer, report.
package deploy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/skiff-dev/skiff/internal/credential"
	"github.com/skiff-dev/skiff/internal/output"
	"github.com/skiff-dev/skiff/internal/profile"
	"github.com/skiff-dev/skiff/internal/secret"
	"github.com/skiff-dev/skiff/internal/transfer"
	"github.com/skiff-dev/skiff/internal/transport"
)

// Deployer runs deploys for resolved profiles.
type Deployer struct {
	// Output handles formatted output.
	Output *output.Output

	// Secrets is the host secret store used for credential resolution.
	Secrets secret.Store

	dialer transport.Dialer
}

// New creates a deployer over the given dialer.
func New(dialer transport.Dialer, secrets secret.Store, out *output.Output) *Deployer {
	return &Deployer{
		Output:  out,
		Secrets: secrets,
		dialer:  dialer,
	}
}

// Stats holds deploy statistics.
type Stats struct {
	Uploaded  int
	Failed    int
	Skipped   int
	StartTime time.Time
	EndTime   time.Time
}

// Duration returns the total deploy time.
func (s *Stats) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// GetUploaded returns the uploaded count (implements output.Stats).
func (s *Stats) GetUploaded() int { return s.Uploaded }

// GetFailed returns the failed count (implements output.Stats).
func (s *Stats) GetFailed() int { return s.Failed }

// GetSkipped returns the skipped count (implements output.Stats).
func (s *Stats) GetSkipped() int { return s.Skipped }

// GetDuration returns the duration (implements output.Stats).
func (s *Stats) GetDuration() time.Duration { return s.Duration() }

// Result holds the result of a deploy run.
type Result struct {
	// Success is true when every transfer completed.
	Success bool

	// Stats holds run statistics.
	Stats *Stats
}

// Run deploys localPath (a file or a directory) to the profile's remote
// directory. Directory deploys reuse one connection for the whole tree;
// single files open one connection for the one operation.
func (d *Deployer) Run(ctx context.Context, p *profile.Profile, localPath string) (*Result, error) {
	stats := &Stats{StartTime: time.Now()}
	result := &Result{Success: true, Stats: stats}

	d.Output.DeployStart(p.String())

	cfg, err := credential.Resolve(p, d.Secrets)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve credentials for %q: %w", p.Name, err)
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return nil, fmt.Errorf("cannot stat %s: %w", localPath, err)
	}

	facade := transfer.New(d.dialer)
	facade.Progress = func(local, remote string) {
		d.Output.FileResult(local, remote, false)
	}

	if info.IsDir() {
		uploaded, err := facade.UploadDir(ctx, cfg, localPath, p.RemoteDir())
		stats.Uploaded = uploaded
		if err != nil {
			stats.Failed = 1
			result.Success = false
			d.Output.Error("Deploy failed: %v", err)
		}
	} else {
		remotePath := p.RemoteDir() + filepath.Base(localPath)
		if err := facade.Upload(ctx, cfg, localPath, remotePath); err != nil {
			stats.Failed = 1
			result.Success = false
			d.Output.Error("Deploy failed: %v", err)
		} else {
			stats.Uploaded = 1
		}
	}

	stats.EndTime = time.Now()
	d.Output.DeployEnd(stats)

	return result, nil
}

// DeployFile uploads one file to its project-relative location under the
// profile's remote directory. relPath must be slash-separated and
// relative to the project root. Used by the save watcher.
func (d *Deployer) DeployFile(ctx context.Context, p *profile.Profile, localPath, relPath string) error {
	cfg, err := credential.Resolve(p, d.Secrets)
	if err != nil {
		return fmt.Errorf("failed to resolve credentials for %q: %w", p.Name, err)
	}

	remotePath := p.RemoteDir() + relPath
	facade := transfer.New(d.dialer)
	if err := facade.Upload(ctx, cfg, localPath, remotePath); err != nil {
		d.Output.FileResult(localPath, remotePath, true)
		return err
	}
	d.Output.FileResult(localPath, remotePath, false)
	return nil
}
