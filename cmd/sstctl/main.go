package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"conser-control/backend/config"
	"conser-control/backend/internal/repository"
	"conser-control/backend/internal/service"
	"conser-control/backend/pkg/database"
	"conser-control/backend/pkg/jwt"
	applogger "conser-control/backend/pkg/logger"
)

// exitErr 通过 cobra 错误链传递退出码
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

const dateLayout = "2006-01-02"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "sstctl",
		Short:         "职业安全合规后台运维工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径")

	root.AddCommand(
		newMigrateCmd(&configPath),
		newStatusCmd(),
		newReportCmd(&configPath),
		newTokenCmd(&configPath),
	)

	if err := root.Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "错误:", ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}

// ── migrate ──

func newMigrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "数据库迁移",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "应用全部未执行的迁移",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(*configPath, func(env *cliEnv) error {
				return database.RunMigrations(env.sqlDB(), env.logger)
			})
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "回滚迁移",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(*configPath, func(env *cliEnv) error {
				return database.RollbackMigrations(env.sqlDB(), steps, env.logger)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "回滚的版本数")

	version := &cobra.Command{
		Use:   "version",
		Short: "显示当前迁移版本",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(*configPath, func(env *cliEnv) error {
				v, dirty, err := database.MigrationVersion(env.sqlDB())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
				return nil
			})
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

// ── status ──

type statusFlags struct {
	expiry     string
	now        string
	windowDays int
}

func newStatusCmd() *cobra.Command {
	var flags statusFlags
	cmd := &cobra.Command{
		Use:   "status",
		Short: "按到期日计算合规状态",
		Long:  "不访问数据库：按 --expiry、--now 与预警窗口天数输出 NeverExpires / Expired / ExpiringSoon / Valid 之一。",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd.OutOrStdout(), flags, time.Now())
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.expiry, "expiry", "", "到期日 YYYY-MM-DD，留空表示永不过期")
	f.StringVar(&flags.now, "now", "", "参考日期 YYYY-MM-DD，默认今天")
	f.IntVar(&flags.windowDays, "window", 30, "预警窗口（天）")
	return cmd
}

func runStatus(w io.Writer, flags statusFlags, today time.Time) error {
	if flags.windowDays < 0 {
		return codeError(2, "预警窗口不能为负数")
	}

	now := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if flags.now != "" {
		t, err := time.Parse(dateLayout, flags.now)
		if err != nil {
			return codeError(2, "--now 格式无效: %s", flags.now)
		}
		now = t
	}

	var expiry *time.Time
	if flags.expiry != "" {
		t, err := time.Parse(dateLayout, flags.expiry)
		if err != nil {
			return codeError(2, "--expiry 格式无效: %s", flags.expiry)
		}
		expiry = &t
	}

	fmt.Fprintln(w, service.ClassifyExpiry(expiry, now, flags.windowDays))
	return nil
}

// ── report ──

func newReportCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "生成合规报表",
	}

	var out string
	pending := &cobra.Command{
		Use:   "pending",
		Short: "导出全部在职员工待办合规项（.xlsx）",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(*configPath, func(env *cliEnv) error {
				svc := service.NewService(env.cfg, repository.NewRepository(env.db), nil, nil, env.logger)
				buf, filename, err := svc.Export.ExportPending(cmd.Context())
				if err != nil {
					return err
				}
				target := out
				if target == "" {
					target = filename
				}
				if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
					return codeError(1, "写入文件失败: %s", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), target)
				return nil
			})
		},
	}
	pending.Flags().StringVar(&out, "out", "", "输出文件，默认 pendencias_<日期>.xlsx")

	cmd.AddCommand(pending)
	return cmd
}

// ── token ──

func newTokenCmd(configPath *string) *cobra.Command {
	var userID, role string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "签发调试用 Access Token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return codeError(2, "%s", err)
			}
			token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(userID, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "用户 ID")
	cmd.Flags().StringVar(&role, "role", "sesmt", "角色：admin / sesmt / viewer")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// ── 公共 ──

type cliEnv struct {
	cfg    *config.Config
	db     *gorm.DB
	logger *zap.Logger
}

func (e *cliEnv) sqlDB() *sql.DB {
	sqlDB, err := e.db.DB()
	if err != nil {
		return nil
	}
	return sqlDB
}

func withDatabase(configPath string, fn func(env *cliEnv) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return codeError(2, "%s", err)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return codeError(2, "%s", err)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		return codeError(3, "%s", err)
	}
	env := &cliEnv{cfg: cfg, db: db, logger: logger}
	defer func() {
		if sqlDB := env.sqlDB(); sqlDB != nil {
			sqlDB.Close()
		}
	}()

	return fn(env)
}
