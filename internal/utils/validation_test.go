package utils

import (
	"testing"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidateTimeWindow(t *testing.T) {
	start := "08:00"
	bad := "8h"

	tests := []struct {
		name    string
		window  domain.TimeWindow
		wantErr bool
	}{
		{"normal", domain.NewTimeWindow("2025-06-10", "08:00", "12:00"), false},
		{"overnight", domain.NewTimeWindow("2025-06-10", "22:00", "06:00"), false},
		{"all day", domain.NewAllDayWindow("2025-06-10"), false},
		{"zero length", domain.NewTimeWindow("2025-06-10", "08:00", "08:00"), true},
		{"bad date", domain.NewTimeWindow("10.06.2025", "08:00", "12:00"), true},
		{"missing end", domain.TimeWindow{Date: "2025-06-10", StartTime: &start}, true},
		{"bad start", domain.TimeWindow{Date: "2025-06-10", StartTime: &bad, EndTime: &start}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimeWindow(tt.window)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTimeWindow_BadTimeWrapsSentinel(t *testing.T) {
	bad := "25:00"
	end := "12:00"
	err := ValidateTimeWindow(domain.TimeWindow{Date: "2025-06-10", StartTime: &bad, EndTime: &end})
	assert.ErrorIs(t, err, ErrInvalidTimeFormat)
}

func TestNormalizeTimeWindow(t *testing.T) {
	w := domain.NewTimeWindow("2025-06-10", "08:00", "12:00")
	w.AllDay = true
	NormalizeTimeWindow(&w)
	assert.Nil(t, w.StartTime)
	assert.Nil(t, w.EndTime)
}

func TestValidateDispatchItem(t *testing.T) {
	item := &domain.DispatchItem{
		TimeWindow: domain.NewAllDayWindow("2025-06-10"),
		Category:   domain.CategoryProjekt,
		Status:     domain.DispatchStatusPlanned,
	}
	assert.NoError(t, ValidateDispatchItem(item))

	item.Category = "URLAUB"
	assert.Error(t, ValidateDispatchItem(item))

	item.Category = domain.CategoryKrank
	item.Status = "DONE"
	assert.Error(t, ValidateDispatchItem(item))
}

func TestValidateResourceType(t *testing.T) {
	assert.NoError(t, ValidateResourceType(domain.ResourceTypeVehicle))
	assert.Error(t, ValidateResourceType("BOAT"))
}
