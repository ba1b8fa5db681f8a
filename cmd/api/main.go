package main

import (
	"orderpipeline/internal/app/api"
	"orderpipeline/internal/config"
)

func main() {
	config.MustInit()
	api.MustNewApp().Run()
}
