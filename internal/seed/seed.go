package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/scheduler"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/utils"
)

var planHeaders = []string{"日期", "开始时间", "结束时间", "全天", "类别", "地点ID", "备注", "员工", "车辆", "设备"}

// PlanRow 是派工计划 CSV 中的一行
type PlanRow struct {
	Line      int
	Item      *domain.DispatchItem
	Resources map[domain.ResourceType][]int64
}

type ImportReport struct {
	Items     int `json:"items"`
	Assigned  int `json:"assigned"`
	Conflicts int `json:"conflicts"`
	Failed    int `json:"failed"`
}

// ParseDispatchPlan 解析派工计划。资源 ID 用分号分隔，空单元格表示没有该类资源
func ParseDispatchPlan(r io.Reader) ([]PlanRow, error) {
	reader := csv.NewReader(r)

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	index := make(map[string]int, len(headers))
	for i, header := range headers {
		index[strings.TrimSpace(header)] = i
	}
	for _, header := range planHeaders {
		if _, ok := index[header]; !ok {
			return nil, fmt.Errorf("没有找到列 %q", header)
		}
	}

	rows := make([]PlanRow, 0)
	line := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		line++

		get := func(header string) string {
			return strings.TrimSpace(record[index[header]])
		}

		item := &domain.DispatchItem{
			Category: domain.Category(get("类别")),
			Status:   domain.DispatchStatusPlanned,
			Note:     get("备注"),
		}

		if get("全天") == "是" {
			item.TimeWindow = domain.NewAllDayWindow(get("日期"))
		} else {
			item.TimeWindow = domain.NewTimeWindow(get("日期"), get("开始时间"), get("结束时间"))
		}

		if location := get("地点ID"); location != "" {
			locationID, err := strconv.ParseInt(location, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("第 %d 行地点ID无效: %w", line, err)
			}
			item.LocationID = &locationID
		}

		if err := utils.ValidateDispatchItem(item); err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}

		resources := make(map[domain.ResourceType][]int64)
		for header, resourceType := range map[string]domain.ResourceType{
			"员工": domain.ResourceTypeWorker,
			"车辆": domain.ResourceTypeVehicle,
			"设备": domain.ResourceTypeDevice,
		} {
			ids, err := parseIDList(get(header))
			if err != nil {
				return nil, fmt.Errorf("第 %d 行%s无效: %w", line, header, err)
			}
			if len(ids) > 0 {
				resources[resourceType] = ids
			}
		}

		rows = append(rows, PlanRow{Line: line, Item: item, Resources: resources})
	}

	return rows, nil
}

func parseIDList(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}

	ids := make([]int64, 0)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ImportDispatchPlan 通过调度服务写入派工单，每个分配都要经过冲突校验。冲突的分配会被跳过并记录日志
func ImportDispatchPlan(ctx context.Context, svc *scheduler.Service, actor domain.Actor, rows []PlanRow) ImportReport {
	report := ImportReport{}

	for _, row := range rows {
		if err := svc.CreateDispatchItem(ctx, actor, row.Item); err != nil {
			slog.Error("插入派工单失败", "line", row.Line, "error", err)
			report.Failed++
			continue
		}
		report.Items++

		for _, resourceType := range []domain.ResourceType{domain.ResourceTypeWorker, domain.ResourceTypeVehicle, domain.ResourceTypeDevice} {
			for _, resourceID := range row.Resources[resourceType] {
				_, err := svc.Assign(ctx, actor, row.Item.ID, resourceType, resourceID)
				switch {
				case err == nil:
					report.Assigned++
				case errors.Is(err, scheduler.ErrOverlapConflict):
					slog.Warn("跳过冲突的分配", "line", row.Line, "resourceType", resourceType, "resourceID", resourceID, "reason", err.Error())
					report.Conflicts++
				default:
					slog.Error("分配资源失败", "line", row.Line, "resourceType", resourceType, "resourceID", resourceID, "error", err)
					report.Failed++
				}
			}
		}
	}

	return report
}

func SeedDispatchPlan(ctx context.Context, svc *scheduler.Service, actor domain.Actor, path string) (ImportReport, error) {
	file, err := os.Open(path)
	if err != nil {
		return ImportReport{}, err
	}
	defer file.Close()

	rows, err := ParseDispatchPlan(file)
	if err != nil {
		return ImportReport{}, err
	}

	report := ImportDispatchPlan(ctx, svc, actor, rows)
	slog.Info("导入派工计划完成", "items", report.Items, "assigned", report.Assigned, "conflicts", report.Conflicts, "failed", report.Failed)

	return report, nil
}

// SeedRandomDispatchItems 从今天起的 days 天里，每天生成 perDay 个派工单并随机分配一名员工
func SeedRandomDispatchItems(ctx context.Context, svc *scheduler.Service, actor domain.Actor, workerIDs []int64, days int, perDay int) ImportReport {
	rows := make([]PlanRow, 0, days*perDay)
	today := time.Now()

	for d := 0; d < days; d++ {
		date := today.AddDate(0, 0, d).Format(utils.DateLayout)
		for i := 0; i < perDay; i++ {
			row := PlanRow{
				Line:      len(rows) + 1,
				Item:      utils.GenerateRandomDispatchItem(date, int64(rand.Intn(5)+1)),
				Resources: map[domain.ResourceType][]int64{},
			}
			if len(workerIDs) > 0 {
				row.Resources[domain.ResourceTypeWorker] = []int64{workerIDs[rand.Intn(len(workerIDs))]}
			}
			rows = append(rows, row)
		}
	}

	return ImportDispatchPlan(ctx, svc, actor, rows)
}
