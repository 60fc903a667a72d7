package ingestion

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Processor dispatches inbound readings onto a worker pool so multiple
// devices are processed in parallel. Submission is fire-and-forget:
// the uplink does not block on pipeline completion. There is no
// ordering guarantee, neither across devices nor within one device;
// workers may interleave a single device's readings.
type Processor struct {
	pipeline *Pipeline

	workerCount int
	readings    chan *RawReading

	mu      sync.RWMutex
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metrics *MetricsTracker
	log     *zap.Logger
}

// NewProcessor creates a processor with the given pool size and queue
// capacity.
func NewProcessor(pipeline *Pipeline, workerCount, bufferSize int, metrics *MetricsTracker, log *zap.Logger) *Processor {
	if workerCount <= 0 {
		workerCount = 4
	}
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	if metrics == nil {
		metrics = NewMetricsTracker()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		pipeline:    pipeline,
		workerCount: workerCount,
		readings:    make(chan *RawReading, bufferSize),
		ctx:         ctx,
		cancel:      cancel,
		metrics:     metrics,
		log:         log,
	}
}

// Start launches the worker pool.
func (p *Processor) Start() {
	p.log.Info("starting ingestion processor",
		zap.Int("workers", p.workerCount),
		zap.Int("buffer_size", cap(p.readings)),
	)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop drains the queue and waits for in-flight readings to finish.
// Stop is idempotent; readings submitted afterwards are dropped.
func (p *Processor) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.readings)
	p.mu.Unlock()

	p.log.Info("stopping ingestion processor")

	p.wg.Wait()
	p.cancel()

	p.log.Info("ingestion processor stopped")
}

// Submit queues one reading. When the queue is full, or the processor
// has been stopped, the reading is dropped and counted rather than
// blocking the uplink.
func (p *Processor) Submit(reading *RawReading) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		p.log.Warn("processor stopped, dropping reading",
			zap.String("device_id", reading.DeviceID),
		)
		p.metrics.Update(func(m *IngestMetrics) {
			m.ReadingsDropped++
		})
		return
	}

	select {
	case p.readings <- reading:
		p.metrics.Update(func(m *IngestMetrics) {
			m.ReadingsReceived++
		})
	default:
		p.log.Warn("ingestion buffer full, dropping reading",
			zap.String("device_id", reading.DeviceID),
		)
		p.metrics.Update(func(m *IngestMetrics) {
			m.ReadingsDropped++
		})
	}
}

func (p *Processor) worker(id int) {
	defer p.wg.Done()

	for reading := range p.readings {
		start := time.Now()

		if _, err := p.pipeline.Process(p.ctx, reading); err != nil {
			p.log.Warn("reading processing failed",
				zap.Int("worker", id),
				zap.String("device_id", reading.DeviceID),
				zap.Error(err),
			)
			p.metrics.Update(func(m *IngestMetrics) {
				m.ReadingsFailed++
			})
			continue
		}

		p.metrics.Update(func(m *IngestMetrics) {
			m.ReadingsProcessed++
			m.LastProcessedAt = time.Now()

			processingTime := time.Since(start)
			if m.AverageProcessingTime == 0 {
				m.AverageProcessingTime = processingTime
			} else {
				m.AverageProcessingTime = (m.AverageProcessingTime + processingTime) / 2
			}
		})
	}
}

// GetMetrics returns current metrics. Queue depth is sampled at call
// time rather than tracked on submit.
func (p *Processor) GetMetrics() IngestMetrics {
	m := p.metrics.Snapshot()
	m.BufferSize = len(p.readings)
	return m
}
