package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestAppendAttachmentPreservesHistory(t *testing.T) {
	var column datatypes.JSON

	first := Attachment{FileName: "1-a.png", FilePath: "uploads/1-a.png"}
	second := Attachment{FileName: "2-b.pdf", FilePath: "uploads/2-b.pdf"}

	column, err := AppendAttachment(column, first)
	require.NoError(t, err)
	require.Len(t, DecodeAttachments(column), 1)

	column, err = AppendAttachment(column, second)
	require.NoError(t, err)

	records := DecodeAttachments(column)
	require.Len(t, records, 2)
	assert.Equal(t, first, records[0])
	assert.Equal(t, second, records[1])
}

func TestProjectMembershipPredicates(t *testing.T) {
	project := Project{
		AuthorID:  7,
		Assignees: datatypes.JSON(`["8","9","9"]`),
	}

	assert.True(t, project.HasAssignee(8))
	assert.True(t, project.HasAssignee(9))
	assert.False(t, project.HasAssignee(7))

	assert.True(t, project.IsAuthor(7))
	assert.False(t, project.IsAuthor(8))

	// The author keeps access without being in the assignee list.
	assert.True(t, project.CanAccess(7))
	assert.True(t, project.CanAccess(8))
	assert.False(t, project.CanAccess(10))

	assert.Equal(t, []string{"8", "9", "9"}, project.AssigneeIDs())
}

func TestTicketEnums(t *testing.T) {
	for _, status := range []string{StatusOpen, StatusInProgress, StatusInReview, StatusDone} {
		assert.True(t, ValidStatus(status))
	}
	assert.False(t, ValidStatus("Reopened"))
	assert.False(t, ValidStatus(""))

	assert.True(t, ValidEstimateUnit("h"))
	assert.True(t, ValidEstimateUnit("d"))
	assert.False(t, ValidEstimateUnit("w"))
}
