package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/config"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/lock"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/repository"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/scheduler"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/seed"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var days int
	var firstWorkerID int64
	var planPath string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机员工, 2: 插入随机派工单, 3: 导入派工计划 CSV)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量 (op=2 时为每天的派工单数量)")
	flag.IntVar(&days, "days", 7, "随机派工单覆盖的天数")
	flag.Int64Var(&firstWorkerID, "first-worker-id", 1, "随机员工的起始员工编号")
	flag.StringVar(&planPath, "plan", "internal/seed/data/dispatch_plan.csv", "派工计划 CSV 文件路径")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	// 种子数据只应在没有其他写入时执行，这里不加分布式锁
	svc := scheduler.NewService(repo, scheduler.RoleGate{}, lock.NopLocker{}, cfg.Dispatch.AllDayHours)
	admin := domain.Actor{Role: domain.RoleAdmin}

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain, firstWorkerID+int64(i))
			if err != nil {
				slog.Error("无法生成随机员工", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateUser(context.Background(), user); err != nil {
				slog.Error("无法插入员工", slog.String("username", user.Username), slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入员工成功", slog.Int("count", cnt))
	case 2:
		if n <= 0 || days <= 0 {
			slog.Error("请输入合法的派工单数量和天数")
			return
		}

		users, err := repo.GetAllUsers(context.Background())
		if err != nil {
			slog.Error("无法获取所有员工", slog.String("error", err.Error()))
			return
		}

		workerIDs := make([]int64, 0, len(users))
		for _, user := range users {
			if user.WorkerID != nil && user.IsActive {
				workerIDs = append(workerIDs, *user.WorkerID)
			}
		}

		report := seed.SeedRandomDispatchItems(context.Background(), svc, admin, workerIDs, days, n)
		slog.Info("插入随机派工单完成", "items", report.Items, "assigned", report.Assigned, "conflicts", report.Conflicts, "failed", report.Failed)
	case 3:
		if _, err := seed.SeedDispatchPlan(context.Background(), svc, admin, planPath); err != nil {
			slog.Error("无法导入派工计划", slog.String("path", planPath), slog.String("error", err.Error()))
		}
	default:
		slog.Error("指定的操作非法")
	}
}
