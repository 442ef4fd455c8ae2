// Package main 修复店主记录与登录账号的不一致
//
//	repair -email owner@example.com   修复单个店主
//	repair -all                       修复全部店主
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/database"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/logger"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/identity"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/provision"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	email := flag.String("email", "", "Owner email to reconcile")
	all := flag.Bool("all", false, "Reconcile every owner and owner account")
	flag.Parse()

	if (*email == "") == !*all {
		fmt.Fprintln(os.Stderr, "exactly one of -email or -all is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.GetLogger()

	db, err := database.Init(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider := identity.NewLocalProvider(repository.NewAuthAccountRepository(db))
	svc := provision.NewRepairService(db, provider, &cfg.Business)

	var results []*provision.RepairResult
	if *all {
		results, err = svc.ReconcileAll(ctx)
	} else {
		var res *provision.RepairResult
		res, err = svc.ReconcileOwner(ctx, *email)
		if res != nil {
			results = append(results, res)
		}
	}
	if err != nil {
		log.Error("Repair failed", zap.Error(err))
	}

	// 新建账号的初始密码只在这里输出一次
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(results)

	failed := err != nil
	for _, r := range results {
		if r.Action == provision.ActionFailed {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
