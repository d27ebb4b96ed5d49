package main

import (
	"log/slog"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/config"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/groups"
)

// Loads a group configuration into a trajectory store, reports what
// could not be applied and writes the normalized configuration
func groupsTool(logger *slog.Logger, cfg *config.ConfigFile, in_path, out_path string) error {
	logger = logger.With("coroutine", "groups")

	group_cfg, err := groups.ReadFile(in_path)
	if err != nil {
		return err
	}

	trajectories := cfg.Groups.Trajectories
	if trajectories <= 0 {
		// every trajectory the file mentions
		for t := range group_cfg.Assignments {
			trajectories = max(trajectories, t+1)
		}
	}

	manager := groups.NewManager(groups.NewTrajectories(trajectories), logger)
	manager.Subscribe(func(e groups.Event) {
		logger.Debug("Event", "event", e.String())
	})
	skipped := manager.LoadConfig(group_cfg)

	for _, tlg := range manager.TopLevelGroups() {
		for _, group := range manager.GroupsOfTLG(tlg.ID) {
			logger.Info(
				"Group",
				"top level group", tlg.Name,
				"id", group.ID,
				"name", group.Name,
				"type", group.Type,
				"trajectories", len(manager.TrajectoriesOfGroup(group.ID)))
		}
	}
	logger.Info(
		"Loaded",
		"version", group_cfg.Version,
		"groups", len(manager.Groups()),
		"types", manager.KnownTypes(),
		"trajectories", trajectories,
		"skipped", skipped)

	if err := groups.WriteFile(out_path, manager.SaveConfig()); err != nil {
		return err
	}
	logger.Info("Written", "path", out_path)
	return nil
}
