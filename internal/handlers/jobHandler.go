package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/config"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/jobmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/job"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/metrics"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/pipeline"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service  *job.Service
	pipeline pipeline.Service
}

func InitJobHandler(jobService *job.Service, pipelineService pipeline.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService, pipeline: pipelineService}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})

}

func CreateNewJob(newJob newJobData) {
	logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	logJH.Info("To create new job")
	handlerInstance.pushToJobChannel(newJob)
}

func GetJobStatus(id string, traceId string) (result jobmodel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

func getPipeline() pipeline.Service {
	if handlerInstance == nil {
		return nil
	}
	return handlerInstance.pipeline
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {

	_job := jobmodel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobmodel.JobStatusQueued
	_job.JobType = newJob.jobType
	_job.JobPayload = jobmodel.JobPayload{
		Scope:        newJob.scope,
		DocumentId:   newJob.documentId,
		DocumentName: newJob.documentName,
		ContentType:  newJob.contentType,
		TempPath:     newJob.tempPath,
		Size:         newJob.size,
		Profile:      docmodel.Profile(newJob.profile),
	}
	if newJob.jobType == jobmodel.JobTypeIngest {
		_job.CurrentStep = jobmodel.IngestInit
	} else {
		_job.CurrentStep = jobmodel.AnalyzeInit
	}

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	logJH.Info("Created new job")

	//a new worker is started every N requests, and eagerly for analysis jobs
	//since those hold a slot for the whole extraction round trip. idle workers
	//retire on their own so the pool shrinks back afterwards
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1) //after sending a request increment counter
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType == jobmodel.JobTypeAnalyze {
		metrics.StartDispatcherSignalCount() //metrics
		logJH.Debug("Worker count ", accurateCount)
		h.service.DispatcherChannel <- true
	}
}
