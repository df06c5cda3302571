package gormrepo

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ripline/ripline/pkg/batch/core/model"
)

func marshalJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	return string(b), nil
}

func unmarshalJSON(data string, v interface{}) error {
	if data == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", v, err)
	}
	return nil
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	cp := t
	return &cp
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func instanceToRow(instance *model.JobInstance) (*jobInstanceRow, error) {
	params, err := marshalJSON(instance.Parameters)
	if err != nil {
		return nil, err
	}
	return &jobInstanceRow{
		ID:         instance.ID,
		JobName:    instance.JobName,
		ParamsHash: instance.Parameters.Hash(),
		Parameters: params,
		CreateTime: instance.CreateTime,
		Version:    instance.Version,
	}, nil
}

func instanceFromRow(row *jobInstanceRow) (*model.JobInstance, error) {
	params := model.NewJobParameters()
	if err := unmarshalJSON(row.Parameters, &params); err != nil {
		return nil, err
	}
	return &model.JobInstance{
		ID:         row.ID,
		JobName:    row.JobName,
		Parameters: params,
		CreateTime: row.CreateTime,
		Version:    row.Version,
	}, nil
}

func executionToRow(execution *model.JobExecution) (*jobExecutionRow, error) {
	params, err := marshalJSON(execution.Parameters)
	if err != nil {
		return nil, err
	}
	ec, err := marshalJSON(execution.ExecutionContext)
	if err != nil {
		return nil, err
	}
	failures, err := marshalJSON(execution.Failures)
	if err != nil {
		return nil, err
	}
	return &jobExecutionRow{
		ID:               execution.ID,
		JobInstanceID:    execution.JobInstanceID,
		JobName:          execution.JobName,
		Parameters:       params,
		StartTime:        optionalTime(execution.StartTime),
		EndTime:          optionalTime(execution.EndTime),
		Status:           execution.Status.String(),
		ExitStatus:       execution.ExitStatus.String(),
		ExecutionContext: ec,
		Failures:         failures,
		CreateTime:       execution.CreateTime,
		LastUpdated:      execution.LastUpdated,
		Version:          execution.Version,
	}, nil
}

func executionFromRow(row *jobExecutionRow) (*model.JobExecution, error) {
	params := model.NewJobParameters()
	if err := unmarshalJSON(row.Parameters, &params); err != nil {
		return nil, err
	}
	ec := model.NewExecutionContext()
	if err := unmarshalJSON(row.ExecutionContext, &ec); err != nil {
		return nil, err
	}
	var failures model.FailureList
	if err := unmarshalJSON(row.Failures, &failures); err != nil {
		return nil, err
	}
	return &model.JobExecution{
		ID:               row.ID,
		JobInstanceID:    row.JobInstanceID,
		JobName:          row.JobName,
		Parameters:       params,
		StartTime:        timeOrZero(row.StartTime),
		EndTime:          timeOrZero(row.EndTime),
		Status:           model.JobStatus(row.Status),
		ExitStatus:       model.ExitStatus(row.ExitStatus),
		ExecutionContext: ec,
		Failures:         failures,
		CreateTime:       row.CreateTime,
		LastUpdated:      row.LastUpdated,
		Version:          row.Version,
	}, nil
}

func stepToRow(execution *model.StepExecution) (*stepExecutionRow, error) {
	ec, err := marshalJSON(execution.ExecutionContext)
	if err != nil {
		return nil, err
	}
	failures, err := marshalJSON(execution.Failures)
	if err != nil {
		return nil, err
	}
	return &stepExecutionRow{
		ID:               execution.ID,
		JobExecutionID:   execution.JobExecutionID,
		StepName:         execution.StepName,
		StartTime:        optionalTime(execution.StartTime),
		EndTime:          optionalTime(execution.EndTime),
		Status:           execution.Status.String(),
		ExitStatus:       execution.ExitStatus.String(),
		ReadCount:        execution.ReadCount,
		WriteCount:       execution.WriteCount,
		CommitCount:      execution.CommitCount,
		RollbackCount:    execution.RollbackCount,
		FilterCount:      execution.FilterCount,
		SkipReadCount:    execution.SkipReadCount,
		SkipProcessCount: execution.SkipProcessCount,
		SkipWriteCount:   execution.SkipWriteCount,
		ExecutionContext: ec,
		Failures:         failures,
		LastUpdated:      execution.LastUpdated,
		Version:          execution.Version,
	}, nil
}

func stepFromRow(row *stepExecutionRow) (*model.StepExecution, error) {
	ec := model.NewExecutionContext()
	if err := unmarshalJSON(row.ExecutionContext, &ec); err != nil {
		return nil, err
	}
	var failures model.FailureList
	if err := unmarshalJSON(row.Failures, &failures); err != nil {
		return nil, err
	}
	return &model.StepExecution{
		ID:               row.ID,
		JobExecutionID:   row.JobExecutionID,
		StepName:         row.StepName,
		StartTime:        timeOrZero(row.StartTime),
		EndTime:          timeOrZero(row.EndTime),
		Status:           model.JobStatus(row.Status),
		ExitStatus:       model.ExitStatus(row.ExitStatus),
		ReadCount:        row.ReadCount,
		WriteCount:       row.WriteCount,
		CommitCount:      row.CommitCount,
		RollbackCount:    row.RollbackCount,
		FilterCount:      row.FilterCount,
		SkipReadCount:    row.SkipReadCount,
		SkipProcessCount: row.SkipProcessCount,
		SkipWriteCount:   row.SkipWriteCount,
		ExecutionContext: ec,
		Failures:         failures,
		LastUpdated:      row.LastUpdated,
		Version:          row.Version,
	}, nil
}
