package main

import (
	"fmt"

	"github.com/temirov/fcom/internal/cli"
	"github.com/temirov/fcom/internal/utils"
)

// main is the entry point for the fcom command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(false)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()
	if applicationExecutionError := cli.Execute(loggerInstance); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
