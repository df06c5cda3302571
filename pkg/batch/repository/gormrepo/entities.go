// Package gormrepo persists batch metadata in a relational database via
// gorm, with schema management through golang-migrate.
package gormrepo

import "time"

type jobInstanceRow struct {
	ID         string    `gorm:"column:id;primaryKey"`
	JobName    string    `gorm:"column:job_name"`
	ParamsHash string    `gorm:"column:params_hash"`
	Parameters string    `gorm:"column:parameters"`
	CreateTime time.Time `gorm:"column:create_time"`
	Version    int       `gorm:"column:version"`
}

func (jobInstanceRow) TableName() string { return "batch_job_instances" }

type jobExecutionRow struct {
	ID               string     `gorm:"column:id;primaryKey"`
	JobInstanceID    string     `gorm:"column:job_instance_id"`
	JobName          string     `gorm:"column:job_name"`
	Parameters       string     `gorm:"column:parameters"`
	StartTime        *time.Time `gorm:"column:start_time"`
	EndTime          *time.Time `gorm:"column:end_time"`
	Status           string     `gorm:"column:status"`
	ExitStatus       string     `gorm:"column:exit_status"`
	ExecutionContext string     `gorm:"column:execution_context"`
	Failures         string     `gorm:"column:failures"`
	CreateTime       time.Time  `gorm:"column:create_time"`
	LastUpdated      time.Time  `gorm:"column:last_updated"`
	Version          int        `gorm:"column:version"`
}

func (jobExecutionRow) TableName() string { return "batch_job_executions" }

type stepExecutionRow struct {
	ID               string     `gorm:"column:id;primaryKey"`
	JobExecutionID   string     `gorm:"column:job_execution_id"`
	StepName         string     `gorm:"column:step_name"`
	StartTime        *time.Time `gorm:"column:start_time"`
	EndTime          *time.Time `gorm:"column:end_time"`
	Status           string     `gorm:"column:status"`
	ExitStatus       string     `gorm:"column:exit_status"`
	ReadCount        int        `gorm:"column:read_count"`
	WriteCount       int        `gorm:"column:write_count"`
	CommitCount      int        `gorm:"column:commit_count"`
	RollbackCount    int        `gorm:"column:rollback_count"`
	FilterCount      int        `gorm:"column:filter_count"`
	SkipReadCount    int        `gorm:"column:skip_read_count"`
	SkipProcessCount int        `gorm:"column:skip_process_count"`
	SkipWriteCount   int        `gorm:"column:skip_write_count"`
	ExecutionContext string     `gorm:"column:execution_context"`
	Failures         string     `gorm:"column:failures"`
	LastUpdated      time.Time  `gorm:"column:last_updated"`
	Version          int        `gorm:"column:version"`
}

func (stepExecutionRow) TableName() string { return "batch_step_executions" }

type checkpointRow struct {
	JobInstanceID string    `gorm:"column:job_instance_id;primaryKey"`
	StepName      string    `gorm:"column:step_name;primaryKey"`
	Context       string    `gorm:"column:context"`
	LastUpdated   time.Time `gorm:"column:last_updated"`
}

func (checkpointRow) TableName() string { return "batch_checkpoints" }
