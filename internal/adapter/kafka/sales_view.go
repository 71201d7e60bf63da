package kafka

import (
	"context"
	"log/slog"

	"github.com/lovoo/goka"
)

// A SalesView reads the units-sold group table maintained
// by [SalesProcessor].
type SalesView struct {
	gv *goka.View
}

func NewSalesView(
	seedBrokers []string, groupTable string,
) (SalesView, error) {
	const op = "NewSalesView"

	gv, err := goka.NewView(
		seedBrokers,
		goka.GroupTable(goka.Group(groupTable)),
		soldCountCodec{},
	)
	if err != nil {
		return SalesView{}, opErr(err, op)
	}
	return SalesView{gv}, nil
}

func (v SalesView) Run(ctx context.Context) {
	const op = "SalesView.Run"
	log := slog.With("op", op)

	err := v.gv.Run(ctx)
	if err != nil {
		log.Error("unexpected fail on run", "err", err)
	}
}

// SoldCount returns the running units-sold total for the product,
// zero when the product has no sales yet.
func (v SalesView) SoldCount(productID string) (int64, error) {
	const op = "SalesView.SoldCount"

	val, err := v.gv.Get(productID)
	if err != nil {
		return 0, opErr(err, op)
	}
	if val == nil {
		return 0, nil
	}

	n, ok := val.(soldCount)
	if !ok {
		return 0, opErr(ErrInvalidValueType, op)
	}
	return int64(n), nil
}
