// Package worker runs the render worker: a Redis Streams consumer that
// renders Handlebars requests and publishes the output.
//
// Each stream message carries a JSON "data" field:
//
//	{"request_id": "r-1", "template": "{{join tags \", \"}}", "data": {"tags": ["a", "b"]}}
//
// Successful renders are published to the result stream, failures (parse
// errors, helper arity errors, invalid modChoose dividends) to the result
// stream with an ".errors" suffix. Every message is acknowledged once handled.
//
// Example usage:
//
//	renderer := render.NewRenderer(template.NewEngine(template.WithLogger(logger)), logger)
//	w := worker.NewWorker(cfg, redisClient, renderer, logger)
//	if err := w.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//
//	healthServer := worker.NewHealthServer(cfg.HealthPort, redisClient, w, logger)
//	healthServer.Start()
//	defer healthServer.Stop()
package worker
