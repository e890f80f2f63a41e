package seed

import (
	"os"
	"strings"
	"testing"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDispatchPlan_SampleFile(t *testing.T) {
	file, err := os.Open("data/dispatch_plan.csv")
	require.NoError(t, err)
	defer file.Close()

	rows, err := ParseDispatchPlan(file)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	first := rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "08:00–12:00", first.Item.Label())
	assert.Equal(t, []int64{42, 43}, first.Resources[domain.ResourceTypeWorker])
	assert.Equal(t, []int64{5}, first.Resources[domain.ResourceTypeVehicle])
	assert.NotContains(t, first.Resources, domain.ResourceTypeDevice)

	allDay := rows[3]
	assert.True(t, allDay.Item.AllDay)
	assert.Equal(t, domain.AllDayLabel, allDay.Item.Label())

	night := rows[4]
	assert.Equal(t, "22:00", *night.Item.StartTime)
	assert.Equal(t, "06:00", *night.Item.EndTime)
}

func TestParseDispatchPlan_Errors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want string
	}{
		{
			name: "missing column",
			csv:  "日期,开始时间\n2025-06-10,08:00\n",
			want: "没有找到列",
		},
		{
			name: "bad category",
			csv:  "日期,开始时间,结束时间,全天,类别,地点ID,备注,员工,车辆,设备\n2025-06-10,08:00,12:00,否,URLAUB,1,,42,,\n",
			want: "第 2 行",
		},
		{
			name: "bad worker list",
			csv:  "日期,开始时间,结束时间,全天,类别,地点ID,备注,员工,车辆,设备\n2025-06-10,08:00,12:00,否,PROJEKT,1,,42;x,,\n",
			want: "员工无效",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDispatchPlan(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
