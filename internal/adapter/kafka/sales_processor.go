package kafka

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/eclypse/storefront/pkg/schema"
	"github.com/lovoo/goka"
)

// A processor is used for composition.
//
// Running and closing the underlying [goka.Processor]
type processor struct {
	opPrefix string
	gp       *goka.Processor
}

func (p *processor) run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *processor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("fall down while preparing", "err", err)
		return
	}
}

func (p *processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// An adjustmentEventCodec used for serde [schema.StockAdjustmentV1]
type adjustmentEventCodec struct {
	serde Serde
}

func newAdjustmentEventCodec(s Serde) adjustmentEventCodec {
	return adjustmentEventCodec{s}
}

func (c adjustmentEventCodec) Encode(v any) ([]byte, error) {
	const op = "adjustmentEventCodec.Encode"
	if _, ok := v.(schema.StockAdjustmentV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c adjustmentEventCodec) Decode(data []byte) (any, error) {
	const op = "adjustmentEventCodec.Decode"
	var s schema.StockAdjustmentV1
	err := c.serde.Decode(data, &s)
	if err != nil {
		return nil, opErr(err, op)
	}
	return s, err
}

// A soldCount is the per-product running units-sold total.
type soldCount int64

// A soldCountCodec used for serde [soldCount]
type soldCountCodec struct{}

func (soldCountCodec) Encode(v any) ([]byte, error) {
	const op = "soldCountCodec.Encode"
	n, ok := v.(soldCount)
	if !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return strconv.AppendInt([]byte(nil), int64(n), 10), nil
}

func (soldCountCodec) Decode(data []byte) (any, error) {
	const op = "soldCountCodec.Decode"
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return nil, opErr(err, op)
	}
	return soldCount(n), nil
}

// A SalesProcessor folds stock adjustment events from the stream
// topic into a per-product units-sold group table.
type SalesProcessor struct {
	opPrefix string
	proc     processor
}

func NewSalesProc(
	seedBrokers []string,
	inputStream string,
	groupTable string,
	adjustmentSerde Serde,
) (*SalesProcessor, error) {
	const op = "NewSalesProc"

	p := SalesProcessor{opPrefix: "SalesProcessor"}

	gg := goka.DefineGroup(goka.Group(groupTable),
		goka.Input(
			goka.Stream(inputStream),
			newAdjustmentEventCodec(adjustmentSerde),
			p.processFn,
		),
		goka.Persist(soldCountCodec{}),
	)

	gp, err := goka.NewProcessor(seedBrokers, gg, withNonlogProcOpt())
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{
		opPrefix: p.opPrefix,
		gp:       gp,
	}
	return &p, nil
}

func (p *SalesProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *SalesProcessor) Close() {
	p.proc.close()
}

func (p *SalesProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"
	log := slog.With("op", makeOp(p.opPrefix, op))

	event, _ := msg.(schema.StockAdjustmentV1)
	if event.SoldDelta == 0 {
		return
	}

	total, _ := ctx.Value().(soldCount)
	total += soldCount(event.SoldDelta)
	ctx.SetValue(total)
	log.Info(
		"updated units sold",
		"productID", event.ProductID,
		"total", int64(total),
	)
}
