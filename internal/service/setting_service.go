package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"conser-control/backend/internal/dto"
	"conser-control/backend/internal/model"
	"conser-control/backend/internal/repository"
)

// SettingService 合规参数业务接口
type SettingService interface {
	Get(ctx context.Context) (*dto.ComplianceSettingResponse, error)
	Update(ctx context.Context, req *dto.UpdateComplianceSettingRequest, callerID string) (*dto.ComplianceSettingResponse, error)
	// WarningWindowDays 当前生效的到期预警天数；未初始化或读取失败时回退到默认值
	WarningWindowDays(ctx context.Context) int
}

type settingService struct {
	repo          *repository.Repository
	defaultWindow int
	logger        *zap.Logger
}

// NewSettingService 创建 SettingService 实例
// defaultDays 为 compliance_settings 未初始化时的天数，<= 0 时使用 30 天
func NewSettingService(repo *repository.Repository, defaultDays int, logger *zap.Logger) SettingService {
	if defaultDays <= 0 {
		defaultDays = DefaultWarningWindowDays
	}
	return &settingService{repo: repo, defaultWindow: defaultDays, logger: logger}
}

// ────────────────────── Get ──────────────────────

func (s *settingService) Get(ctx context.Context) (*dto.ComplianceSettingResponse, error) {
	setting, err := s.repo.ComplianceSetting.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.ComplianceSettingResponse{WarningWindowDays: s.defaultWindow}, nil
		}
		s.logger.Error("查询合规参数失败", zap.Error(err))
		return nil, err
	}

	return &dto.ComplianceSettingResponse{
		WarningWindowDays: setting.WarningWindowDays,
		UpdatedAt:         setting.UpdatedAt.Format(timeLayout),
	}, nil
}

// ────────────────────── Update ──────────────────────

func (s *settingService) Update(ctx context.Context, req *dto.UpdateComplianceSettingRequest, callerID string) (*dto.ComplianceSettingResponse, error) {
	setting, err := s.repo.ComplianceSetting.Get(ctx)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询合规参数失败", zap.Error(err))
			return nil, err
		}
		setting = &model.ComplianceSetting{Singleton: true, WarningWindowDays: s.defaultWindow}
		setting.CreatedBy = &callerID
	}

	if req.WarningWindowDays != nil {
		setting.WarningWindowDays = *req.WarningWindowDays
	}
	setting.UpdatedBy = &callerID

	if err := s.repo.ComplianceSetting.Update(ctx, setting); err != nil {
		s.logger.Error("更新合规参数失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("合规参数已更新", zap.Int("warning_window_days", setting.WarningWindowDays))
	return &dto.ComplianceSettingResponse{
		WarningWindowDays: setting.WarningWindowDays,
		UpdatedAt:         setting.UpdatedAt.Format(timeLayout),
	}, nil
}

// ────────────────────── WarningWindowDays ──────────────────────

func (s *settingService) WarningWindowDays(ctx context.Context) int {
	days := s.defaultWindow
	setting, err := s.repo.ComplianceSetting.Get(ctx)
	switch {
	case err == nil && setting.WarningWindowDays > 0:
		days = setting.WarningWindowDays
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Warn("读取预警窗口失败，使用默认值", zap.Error(err))
	}
	return days
}
