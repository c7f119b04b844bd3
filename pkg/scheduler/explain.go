package scheduler

import (
	"fmt"
	"strings"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
)

// explain composes the human-readable decision string attached to each
// scheduled case on the cause list
func explain(c *models.Case, courtroomID, position int, policyName string, forcedRipe bool) string {
	parts := make([]string, 0, 4)

	if c.IsUrgent {
		parts = append(parts, "urgent matter")
	}
	parts = append(parts, fmt.Sprintf("stage %s", c.CurrentStage))
	if forcedRipe {
		parts = append(parts, "listed by registrar override")
	} else {
		parts = append(parts, fmt.Sprintf("ordered by %s policy (priority %.3f)", policyName, c.PriorityScore))
	}
	parts = append(parts, fmt.Sprintf("assigned to courtroom %d at position %d", courtroomID, position+1))

	return strings.Join(parts, "; ")
}
