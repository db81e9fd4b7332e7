package core

import (
	"sort"
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Command{}
)

// RegisterCommand registers a command under its name and aliases
func RegisterCommand(cmd Command) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[cmd.Name()] = cmd
	for _, a := range cmd.Aliases() {
		registry[a] = cmd
	}
}

// GetCommand returns the command with the given name or alias
func GetCommand(name string) (Command, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	cmd, ok := registry[name]
	return cmd, ok
}

// AllCommands returns all registered commands sorted by name
func AllCommands() []Command {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := map[string]bool{}
	list := make([]Command, 0, len(registry))
	for _, cmd := range registry {
		if seen[cmd.Name()] {
			continue
		}
		list = append(list, cmd)
		seen[cmd.Name()] = true
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// FindComponent returns the command owning customID.
func FindComponent(customID string) (Command, bool) {
	for _, cmd := range AllCommands() {
		cr, ok := cmd.(ComponentRouter)
		if !ok {
			continue
		}
		if prefix := cr.ComponentPrefix(); prefix != "" && strings.HasPrefix(customID, prefix) {
			return cmd, true
		}
	}
	return nil, false
}
