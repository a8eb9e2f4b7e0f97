// Package pipeline runs a manifest build as a sequence of steps.
//
// A build goes through four steps: scan the image directory, load the
// phenotype table, join the two on subject identifier, and write the
// manifest. Each step is a Step that receives the shared *model.Run and
// fills in its part of it. The pipeline stops at the first failing step,
// so the manifest is only written once every earlier step succeeded.
//
// Basic usage:
//
//	p, err := pipeline.DefaultPipeline(cfg, pipeline.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	run := pipeline.NewRun(cfg)
//	if err := p.Execute(ctx, run); err != nil {
//		return err
//	}
package pipeline
