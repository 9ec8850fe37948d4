package gitops

import (
	"context"
	"log/slog"
	"time"
)

const (
	ciSettleDelay   = 5 * time.Second
	ciPollInterval  = 10 * time.Second
	defaultCITimeout = 5 * time.Minute
)

// CIOutcome is the Monitor's verdict for one branch's CI observation
// (spec.md §4.7).
type CIOutcome struct {
	Triggered  bool
	Passed     bool
	Conclusion string
	Reason     string
}

// Monitor discovers the remote CI workflow for a branch, dispatches it if
// possible, and polls until a terminal run or timeout.
type Monitor struct {
	Client  *GitHubClient
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewMonitor returns a Monitor using client, polling for timeout (or the
// 5-minute default if zero).
func NewMonitor(client *GitHubClient, timeout time.Duration, logger *slog.Logger) *Monitor {
	if timeout <= 0 {
		timeout = defaultCITimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{Client: client, Timeout: timeout, Logger: logger}
}

// Observe lists owner/repo's workflows, selects and dispatches one on
// branch, then polls for a terminal run (spec.md §4.7).
func (m *Monitor) Observe(ctx context.Context, owner, repo, branch string) CIOutcome {
	workflows, err := m.Client.ListWorkflows(ctx, owner, repo)
	if err != nil {
		m.Logger.Warn("monitor: list workflows failed", "error", err)
		return CIOutcome{Triggered: false, Conclusion: "no_ci", Reason: err.Error()}
	}
	if len(workflows) == 0 {
		return CIOutcome{Triggered: false, Conclusion: "no_ci", Reason: "No workflows configured"}
	}

	selected := workflows[0]
	for _, w := range workflows {
		if w.State == "active" {
			selected = w
			break
		}
	}

	if err := m.Client.DispatchWorkflow(ctx, owner, repo, selected.ID, branch); err != nil {
		m.Logger.Info("monitor: dispatch unsupported, waiting for auto-trigger", "workflow", selected.Name, "error", err)
	}

	return m.poll(ctx, owner, repo, branch)
}

func (m *Monitor) poll(ctx context.Context, owner, repo, branch string) CIOutcome {
	deadline := time.Now().Add(m.Timeout)

	settle := time.NewTimer(ciSettleDelay)
	defer settle.Stop()
	select {
	case <-ctx.Done():
		return CIOutcome{Triggered: true, Passed: false, Conclusion: "timeout"}
	case <-settle.C:
	}

	ticker := time.NewTicker(ciPollInterval)
	defer ticker.Stop()

	for {
		runs, err := m.Client.ListRunsOnBranch(ctx, owner, repo, branch)
		if err != nil {
			m.Logger.Warn("monitor: poll failed, continuing", "error", err)
		} else {
			for _, run := range runs {
				if run.Status == "completed" {
					return CIOutcome{
						Triggered:  true,
						Passed:     run.Conclusion == "success",
						Conclusion: run.Conclusion,
					}
				}
			}
		}

		if time.Now().After(deadline) {
			return CIOutcome{Triggered: true, Passed: false, Conclusion: "timeout"}
		}

		select {
		case <-ctx.Done():
			return CIOutcome{Triggered: true, Passed: false, Conclusion: "timeout"}
		case <-ticker.C:
		}
	}
}
