package main

import (
	"orderpipeline/internal/app/worker"
	"orderpipeline/internal/config"
)

func main() {
	config.MustInit()
	worker.MustNewApp().Run()
}
