package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordinator/ordinator/internal/entity"
	"github.com/ordinator/ordinator/internal/schedenv"
)

// TestValidationResultCreation tests creating a new result
func TestValidationResultCreation(t *testing.T) {
	result := NewResult()

	assert.NotNil(t, result)
	assert.Empty(t, result.Messages)
	assert.True(t, result.IsValid())
	assert.True(t, result.CanImport())
	assert.True(t, result.CanPromote())
}

// TestAddError tests adding error messages
func TestAddError(t *testing.T) {
	result := NewResult()

	result.AddError(CodeUnknownAsset, "work order 2400000001 references unrecognized asset PLT9")

	assert.Len(t, result.Messages, 1)
	assert.False(t, result.IsValid())
	assert.False(t, result.CanImport())
	assert.False(t, result.CanPromote())
	assert.Equal(t, 1, result.ErrorCount())
}

// TestAddWarning tests adding warning messages
func TestAddWarning(t *testing.T) {
	result := NewResult()

	result.AddWarning(CodeEmptyWorkOrder, "work order 2400000002 has no operations")

	assert.Len(t, result.Messages, 1)
	assert.True(t, result.IsValid())   // Warnings don't make it invalid
	assert.True(t, result.CanImport()) // Can import with warnings
	assert.False(t, result.CanPromote())
	assert.Equal(t, 1, result.WarningCount())
}

// TestAddInfo tests adding info messages
func TestAddInfo(t *testing.T) {
	result := NewResult()

	result.AddInfo("INFO_CODE", "This is informational")

	assert.Len(t, result.Messages, 1)
	assert.True(t, result.IsValid())
	assert.True(t, result.CanImport())
	assert.True(t, result.CanPromote())
	assert.Equal(t, 1, result.InfoCount())
}

// TestMultipleMessages tests collecting multiple messages
func TestMultipleMessages(t *testing.T) {
	result := NewResult()

	result.
		AddError(CodeUnknownResource, "unrecognized resource").
		AddWarning(CodeEmptyWorkOrder, "no operations").
		AddInfo("INFO_CODE", "processing completed with warnings")

	assert.Len(t, result.Messages, 3)
	assert.Equal(t, 1, result.ErrorCount())
	assert.Equal(t, 1, result.WarningCount())
	assert.Equal(t, 1, result.InfoCount())
	assert.False(t, result.IsValid())
	assert.False(t, result.CanImport())
	assert.False(t, result.CanPromote())
}

// TestMessagesByCode tests filtering messages by code
func TestMessagesByCode(t *testing.T) {
	result := NewResult()

	result.
		AddError(CodeUnknownResource, "unrecognized resource: MtnMech").
		AddError(CodeUnknownResource, "unrecognized resource: MtnElec")

	messages := result.MessagesByCode(CodeUnknownResource)

	assert.Len(t, messages, 2)
	for _, msg := range messages {
		assert.Equal(t, CodeUnknownResource, msg.Code)
	}
}

// TestMessagesBySeverity tests filtering messages by severity
func TestMessagesBySeverity(t *testing.T) {
	result := NewResult()

	result.
		AddError(CodeUnknownAsset, "Error 1").
		AddError(CodeUnknownAsset, "Error 2").
		AddWarning(CodeEmptyWorkOrder, "Warning 1").
		AddInfo("CODE", "Info 1")

	errors := result.MessagesBySeverity(SeverityError)
	warnings := result.MessagesBySeverity(SeverityWarning)
	infos := result.MessagesBySeverity(SeverityInfo)

	assert.Len(t, errors, 2)
	assert.Len(t, warnings, 1)
	assert.Len(t, infos, 1)
}

// TestHasErrorsAndWarnings tests flag methods
func TestHasErrorsAndWarnings(t *testing.T) {
	resultClean := NewResult()
	assert.False(t, resultClean.HasErrors())
	assert.False(t, resultClean.HasWarnings())

	resultWithError := NewResult().AddError("CODE", "Error")
	assert.True(t, resultWithError.HasErrors())
	assert.False(t, resultWithError.HasWarnings())

	resultWithWarning := NewResult().AddWarning("CODE", "Warning")
	assert.False(t, resultWithWarning.HasErrors())
	assert.True(t, resultWithWarning.HasWarnings())

	resultWithBoth := NewResult().
		AddError("ERR", "Error").
		AddWarning("WARN", "Warning")
	assert.True(t, resultWithBoth.HasErrors())
	assert.True(t, resultWithBoth.HasWarnings())
}

// TestWithContext tests messages with additional context
func TestWithContext(t *testing.T) {
	result := NewResult()

	context := map[string]interface{}{
		"asset":             "PLT9",
		"work_order_number": 2400000001,
	}

	result.AddErrorWithContext(CodeUnknownAsset, "unrecognized asset", context)

	assert.Len(t, result.Messages, 1)
	msg := result.Messages[0]
	assert.Equal(t, context, msg.Context)
	assert.Equal(t, "PLT9", msg.Context["asset"])
}

// TestToJSON tests JSON serialization
func TestToJSON(t *testing.T) {
	result := NewResult()

	result.
		AddError(CodeUnknownAsset, "unrecognized asset").
		AddWarning(CodeEmptyWorkOrder, "empty work order")

	json, err := result.ToJSON()

	assert.NoError(t, err)
	assert.NotEmpty(t, json)
	assert.Contains(t, json, CodeUnknownAsset)
	assert.Contains(t, json, CodeEmptyWorkOrder)
	assert.Contains(t, json, "ERROR")
	assert.Contains(t, json, "WARNING")
}

// TestFromJSON tests JSON deserialization
func TestFromJSON(t *testing.T) {
	original := NewResult()
	original.
		AddError(CodeUnknownAsset, "unrecognized asset").
		AddWarning(CodeEmptyWorkOrder, "empty work order")

	jsonStr, err := original.ToJSON()
	require.NoError(t, err)

	restored, err := FromJSON(jsonStr)
	require.NoError(t, err)

	assert.Len(t, restored.Messages, 2)
	assert.Equal(t, original.ErrorCount(), restored.ErrorCount())
	assert.Equal(t, original.WarningCount(), restored.WarningCount())
}

// TestSummary tests human-readable summary
func TestSummary(t *testing.T) {
	result := NewResult()
	result.
		AddError(CodeUnknownAsset, "unrecognized asset").
		AddWarning(CodeEmptyWorkOrder, "empty work order").
		AddInfo("INFO", "done")

	summary := result.Summary()

	assert.Contains(t, summary, "1 errors")
	assert.Contains(t, summary, "1 warnings")
	assert.Contains(t, summary, "1 info")
	assert.Contains(t, summary, CodeUnknownAsset)
	assert.Contains(t, summary, CodeEmptyWorkOrder)
}

// TestChaining tests method chaining
func TestChaining(t *testing.T) {
	result := NewResult().
		AddError("CODE1", "Error 1").
		AddWarning("CODE2", "Warning 1").
		AddInfo("CODE3", "Info 1")

	assert.Len(t, result.Messages, 3)
	assert.Equal(t, 1, result.ErrorCount())
	assert.Equal(t, 1, result.WarningCount())
	assert.Equal(t, 1, result.InfoCount())
}

func baseSnapshot(asset entity.Asset, period entity.Period) schedenv.Snapshot {
	return schedenv.Snapshot{
		Periods: []entity.Period{period},
		Specifications: []*schedenv.ActorSpecification{
			{
				Asset: asset,
				OperationalConfigs: []schedenv.OperationalConfig{
					{Technician: entity.Technician{ID: "T1", Skills: []entity.Resource{entity.ResourceMtnMech}}},
				},
			},
		},
	}
}

// TestValidateSnapshot_Clean asserts a well-formed snapshot passes cleanly.
func TestValidateSnapshot_Clean(t *testing.T) {
	asset := entity.Asset("PLT1")
	period := entity.NewPeriod(2024, 41)
	snap := baseSnapshot(asset, period)
	snap.WorkOrders = []*entity.WorkOrder{
		{
			WorkOrderNumber: 2400000001,
			Asset:           asset,
			Operations: map[entity.ActivityNumber]*entity.Operation{
				1: {ActivityNumber: 1, Resource: entity.ResourceMtnMech, WorkRemaining: 4},
			},
		},
	}

	result := ValidateSnapshot(snap)
	assert.True(t, result.IsValid())
	assert.Empty(t, result.Messages)
}

// TestValidateSnapshot_UnknownAsset asserts a work order referencing an
// asset with no configured specification is rejected (§6).
func TestValidateSnapshot_UnknownAsset(t *testing.T) {
	period := entity.NewPeriod(2024, 41)
	snap := baseSnapshot("PLT1", period)
	snap.WorkOrders = []*entity.WorkOrder{
		{
			WorkOrderNumber: 2400000001,
			Asset:           "PLT9",
			Operations: map[entity.ActivityNumber]*entity.Operation{
				1: {ActivityNumber: 1, Resource: entity.ResourceMtnMech, WorkRemaining: 4},
			},
		},
	}

	result := ValidateSnapshot(snap)
	require.False(t, result.IsValid())
	assert.Len(t, result.MessagesByCode(CodeUnknownAsset), 1)
}

// TestValidateSnapshot_UnknownResource asserts an operation requiring a
// resource no technician on the asset holds is rejected.
func TestValidateSnapshot_UnknownResource(t *testing.T) {
	asset := entity.Asset("PLT1")
	period := entity.NewPeriod(2024, 41)
	snap := baseSnapshot(asset, period)
	snap.WorkOrders = []*entity.WorkOrder{
		{
			WorkOrderNumber: 2400000001,
			Asset:           asset,
			Operations: map[entity.ActivityNumber]*entity.Operation{
				1: {ActivityNumber: 1, Resource: entity.ResourceMtnElec, WorkRemaining: 4},
			},
		},
	}

	result := ValidateSnapshot(snap)
	require.False(t, result.IsValid())
	assert.Len(t, result.MessagesByCode(CodeUnknownResource), 1)
}

// TestValidateSnapshot_NonContiguousPeriods asserts an out-of-order period
// horizon is rejected.
func TestValidateSnapshot_NonContiguousPeriods(t *testing.T) {
	asset := entity.Asset("PLT1")
	snap := baseSnapshot(asset, entity.NewPeriod(2024, 41))
	snap.Periods = []entity.Period{entity.NewPeriod(2024, 43), entity.NewPeriod(2024, 41)}

	result := ValidateSnapshot(snap)
	require.False(t, result.IsValid())
	assert.Len(t, result.MessagesByCode(CodeNonContiguousDays), 1)
}

// TestValidateSnapshot_DuplicateWorkOrder asserts a repeated work order
// number across the snapshot is flagged.
func TestValidateSnapshot_DuplicateWorkOrder(t *testing.T) {
	asset := entity.Asset("PLT1")
	period := entity.NewPeriod(2024, 41)
	snap := baseSnapshot(asset, period)
	wo := &entity.WorkOrder{
		WorkOrderNumber: 2400000001,
		Asset:           asset,
		Operations: map[entity.ActivityNumber]*entity.Operation{
			1: {ActivityNumber: 1, Resource: entity.ResourceMtnMech, WorkRemaining: 4},
		},
	}
	snap.WorkOrders = []*entity.WorkOrder{wo, wo}

	result := ValidateSnapshot(snap)
	require.False(t, result.IsValid())
	assert.Len(t, result.MessagesByCode(CodeDuplicateWorkOrder), 1)
}
