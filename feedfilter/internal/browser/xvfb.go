package browser

import (
	"fmt"
	"os/exec"
	"time"
)

// startXvfb launches the virtual display headful Chrome renders into.
func (m *Manager) startXvfb() error {
	if m.xvfb != nil {
		return nil
	}

	cmd := exec.Command("Xvfb", m.cfg.XvfbDisplay, "-screen", "0", "1280x2000x24", "-nolisten", "tcp")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start xvfb on %s: %w", m.cfg.XvfbDisplay, err)
	}
	m.xvfb = cmd

	// Xvfb accepts connections shortly after fork.
	time.Sleep(300 * time.Millisecond)

	m.cfg.Logger.Info("browser: xvfb started", "display", m.cfg.XvfbDisplay, "pid", cmd.Process.Pid)
	return nil
}

func (m *Manager) stopXvfb() {
	if m.xvfb == nil {
		return
	}
	if m.xvfb.Process != nil {
		m.xvfb.Process.Kill()
		m.xvfb.Wait()
	}
	m.cfg.Logger.Info("browser: xvfb stopped", "display", m.cfg.XvfbDisplay)
	m.xvfb = nil
}
