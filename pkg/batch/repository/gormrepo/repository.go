package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ripline/ripline/pkg/batch/core/model"
	"github.com/ripline/ripline/pkg/batch/core/repository"
)

// JobRepository persists batch metadata through gorm.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository wraps the given gorm handle.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return err
}

func (r *JobRepository) SaveJobInstance(ctx context.Context, instance *model.JobInstance) error {
	row, err := instanceToRow(instance)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to save job instance: %w", err)
	}
	return nil
}

func (r *JobRepository) FindJobInstanceByJobNameAndParameters(ctx context.Context, jobName string, params model.JobParameters) (*model.JobInstance, error) {
	var row jobInstanceRow
	err := r.db.WithContext(ctx).
		Where("job_name = ? AND params_hash = ?", jobName, params.Hash()).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return instanceFromRow(&row)
}

func (r *JobRepository) FindJobInstanceByID(ctx context.Context, id string) (*model.JobInstance, error) {
	var row jobInstanceRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translateErr(err)
	}
	return instanceFromRow(&row)
}

func (r *JobRepository) SaveJobExecution(ctx context.Context, execution *model.JobExecution) error {
	execution.Version++
	row, err := executionToRow(execution)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to save job execution: %w", err)
	}
	return nil
}

func (r *JobRepository) UpdateJobExecution(ctx context.Context, execution *model.JobExecution) error {
	execution.Version++
	row, err := executionToRow(execution)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&jobExecutionRow{}).Where("id = ?", row.ID).Updates(row)
	if result.Error != nil {
		return fmt.Errorf("failed to update job execution: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *JobRepository) FindJobExecutionByID(ctx context.Context, id string) (*model.JobExecution, error) {
	var row jobExecutionRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translateErr(err)
	}
	return r.assembleExecution(ctx, &row)
}

func (r *JobRepository) FindLatestJobExecution(ctx context.Context, jobInstanceID string) (*model.JobExecution, error) {
	var row jobExecutionRow
	err := r.db.WithContext(ctx).
		Where("job_instance_id = ?", jobInstanceID).
		Order("create_time DESC").
		First(&row).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return r.assembleExecution(ctx, &row)
}

func (r *JobRepository) FindJobExecutionsByInstance(ctx context.Context, instance *model.JobInstance) ([]*model.JobExecution, error) {
	var rows []jobExecutionRow
	err := r.db.WithContext(ctx).
		Where("job_instance_id = ?", instance.ID).
		Order("create_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list job executions: %w", err)
	}
	out := make([]*model.JobExecution, 0, len(rows))
	for i := range rows {
		exec, err := r.assembleExecution(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, exec)
	}
	return out, nil
}

// assembleExecution attaches the execution's step executions.
func (r *JobRepository) assembleExecution(ctx context.Context, row *jobExecutionRow) (*model.JobExecution, error) {
	execution, err := executionFromRow(row)
	if err != nil {
		return nil, err
	}
	var stepRows []stepExecutionRow
	err = r.db.WithContext(ctx).
		Where("job_execution_id = ?", row.ID).
		Order("start_time ASC").
		Find(&stepRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load step executions: %w", err)
	}
	for i := range stepRows {
		se, err := stepFromRow(&stepRows[i])
		if err != nil {
			return nil, err
		}
		se.JobExecution = execution
		execution.StepExecutions = append(execution.StepExecutions, se)
	}
	return execution, nil
}

func (r *JobRepository) SaveStepExecution(ctx context.Context, execution *model.StepExecution) error {
	execution.Version++
	row, err := stepToRow(execution)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to save step execution: %w", err)
	}
	return nil
}

func (r *JobRepository) UpdateStepExecution(ctx context.Context, execution *model.StepExecution) error {
	execution.Version++
	row, err := stepToRow(execution)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&stepExecutionRow{}).Where("id = ?", row.ID).Updates(row)
	if result.Error != nil {
		return fmt.Errorf("failed to update step execution: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *JobRepository) FindStepExecutionByID(ctx context.Context, id string) (*model.StepExecution, error) {
	var row stepExecutionRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translateErr(err)
	}
	return stepFromRow(&row)
}

func (r *JobRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveCheckpoint upserts a checkpoint keyed by job instance and step.
func (r *JobRepository) SaveCheckpoint(ctx context.Context, jobInstanceID, stepName string, ec model.ExecutionContext) error {
	data, err := marshalJSON(ec)
	if err != nil {
		return err
	}
	row := &checkpointRow{
		JobInstanceID: jobInstanceID,
		StepName:      stepName,
		Context:       data,
		LastUpdated:   time.Now(),
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint retrieves a stored checkpoint, or ErrNotFound.
func (r *JobRepository) LoadCheckpoint(ctx context.Context, jobInstanceID, stepName string) (model.ExecutionContext, error) {
	var row checkpointRow
	err := r.db.WithContext(ctx).
		Where("job_instance_id = ? AND step_name = ?", jobInstanceID, stepName).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err)
	}
	ec := model.NewExecutionContext()
	if err := unmarshalJSON(row.Context, &ec); err != nil {
		return nil, err
	}
	return ec, nil
}

// DeleteCheckpoint removes a stored checkpoint.
func (r *JobRepository) DeleteCheckpoint(ctx context.Context, jobInstanceID, stepName string) error {
	err := r.db.WithContext(ctx).
		Where("job_instance_id = ? AND step_name = ?", jobInstanceID, stepName).
		Delete(&checkpointRow{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}
