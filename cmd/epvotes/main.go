package main

import (
	"epvotes-backend/cmd/epvotes/commands"
	"epvotes-backend/lib/telemetry"
	"epvotes-backend/lib/util/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "epvotes")
	telemetry.InitSlog(true)
	telemetry.InstrumentPerfStats(ctx)
	commands.ExecuteContext(ctx)
}
