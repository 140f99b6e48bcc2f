package api

import (
	"log"
	"os"
	"sync"
	"time"
)

// ProcessMonitor watches the parent process and triggers a shutdown
// callback when it dies, so a backend started by a GUI front end does not
// linger as an orphan after the GUI crashes or is force-quit. Death is
// detected by the kernel re-parenting this process: Getppid() changes.
type ProcessMonitor struct {
	parentPID     int
	checkInterval time.Duration
	shutdownFunc  func()
	stopChan      chan struct{}
	stopOnce      sync.Once
}

// NewProcessMonitor creates a monitor over the current parent process.
func NewProcessMonitor(shutdownFunc func()) *ProcessMonitor {
	return &ProcessMonitor{
		parentPID:     os.Getppid(),
		checkInterval: 2 * time.Second,
		shutdownFunc:  shutdownFunc,
		stopChan:      make(chan struct{}),
	}
}

// Start begins polling in a background goroutine.
func (pm *ProcessMonitor) Start() {
	go pm.monitorLoop()
}

// Stop halts the monitor. Safe to call more than once.
func (pm *ProcessMonitor) Stop() {
	pm.stopOnce.Do(func() { close(pm.stopChan) })
}

func (pm *ProcessMonitor) monitorLoop() {
	ticker := time.NewTicker(pm.checkInterval)
	defer ticker.Stop()

	log.Printf("Process monitor started (parent PID: %d, check interval: %v)", pm.parentPID, pm.checkInterval)

	for {
		select {
		case <-ticker.C:
			if ppid := os.Getppid(); ppid != pm.parentPID {
				log.Printf("Parent process died (PPID changed: %d -> %d), initiating graceful shutdown",
					pm.parentPID, ppid)
				pm.shutdownFunc()
				return
			}
		case <-pm.stopChan:
			log.Println("Process monitor stopped")
			return
		}
	}
}
