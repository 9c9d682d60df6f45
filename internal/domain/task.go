package domain

import (
	"errors"
	"fmt"
	"time"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskBlocked    TaskStatus = "blocked"
)

var ErrDependencyCycle = errors.New("task dependencies must form a DAG")

// Task is a unit of work derived from a Goal by the planner.
type Task struct {
	ID          string     `json:"id"`
	GoalID      string     `json:"goal_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`

	Assignee       *string      `json:"assignee"`
	DueDate        *time.Time   `json:"due_date"`
	Priority       GoalPriority `json:"priority"`
	EstimatedHours *float64     `json:"estimated_hours"`
	ActualHours    *float64     `json:"actual_hours"`

	Dependencies []string `json:"dependencies"` // IDs of tasks that must complete first
	ToolRefs     []string `json:"tool_refs"`    // External tools the task touches

	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ValidateDependencies checks that the dependency graph over the given set
// of tasks is acyclic, i.e. no task depends on itself transitively.
// Dependencies pointing outside the set are ignored.
func ValidateDependencies(tasks []Task) error {
	edges := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		edges[t.ID] = t.Dependencies
	}

	const (
		white = 0 // unvisited
		grey  = 1 // on the current path
		black = 2 // fully explored
	)
	color := make(map[string]int, len(tasks))

	var visit func(id string) error
	visit = func(id string) error {
		switch color[id] {
		case grey:
			return fmt.Errorf("%w: cycle through task %s", ErrDependencyCycle, id)
		case black:
			return nil
		}
		color[id] = grey
		for _, dep := range edges[id] {
			if _, known := edges[dep]; !known {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		color[id] = black
		return nil
	}

	for _, t := range tasks {
		if err := visit(t.ID); err != nil {
			return err
		}
	}
	return nil
}
