package printer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Op is the kind of a printer directive.
type Op string

const (
	OpInitialize   Op = "initialize"
	OpSetAlignment Op = "set_alignment"
	OpPrintText    Op = "print_text"
	OpPrintBarcode Op = "print_barcode"
	OpFeed         Op = "feed"
)

// Command is one printer directive. Only the fields relevant to Op are set.
type Command struct {
	Op        Op           `json:"op"`
	Alignment Alignment    `json:"alignment,omitempty"`
	Text      string       `json:"text,omitempty"`
	Style     TextStyle    `json:"style,omitempty"`
	Barcode   *BarcodeSpec `json:"barcode,omitempty"`
	Units     int          `json:"units,omitempty"`
}

func Initialize() Command {
	return Command{Op: OpInitialize}
}

func SetAlignment(a Alignment) Command {
	return Command{Op: OpSetAlignment, Alignment: a}
}

func PrintText(text string, style TextStyle) Command {
	return Command{Op: OpPrintText, Text: text, Style: style}
}

func PrintBarcode(spec BarcodeSpec) Command {
	return Command{Op: OpPrintBarcode, Barcode: &spec}
}

func Feed(units int) Command {
	return Command{Op: OpFeed, Units: units}
}

// Execute sends cmds to d in order. A barcode directive is skipped when the
// driver has no barcode support; every other failure stops the sequence.
func Execute(ctx context.Context, d Driver, cmds []Command, logger *zap.Logger) error {
	for i, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch cmd.Op {
		case OpInitialize:
			err = d.Initialize(ctx)
		case OpSetAlignment:
			err = d.SetAlignment(ctx, cmd.Alignment)
		case OpPrintText:
			err = d.PrintText(ctx, cmd.Text, cmd.Style)
		case OpFeed:
			err = d.Feed(ctx, cmd.Units)
		case OpPrintBarcode:
			err = printBarcode(ctx, d, cmd, logger)
		default:
			err = fmt.Errorf("unknown printer directive %q", cmd.Op)
		}
		if err != nil {
			return fmt.Errorf("directive %d (%s): %w", i, cmd.Op, err)
		}
	}
	return nil
}

func printBarcode(ctx context.Context, d Driver, cmd Command, logger *zap.Logger) error {
	bp, ok := d.(BarcodePrinter)
	if !ok || cmd.Barcode == nil {
		logger.Debug("skipping barcode, driver has no barcode support")
		return nil
	}
	err := bp.PrintBarcode(ctx, *cmd.Barcode)
	if errors.Is(err, ErrBarcodeUnsupported) {
		logger.Debug("skipping barcode", zap.String("data", cmd.Barcode.Data), zap.Error(err))
		return nil
	}
	return err
}
