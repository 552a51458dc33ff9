// Command subtracker — консольный клиент трекера подписок.
//
// Данные берутся из REST API, а выборки, сводка и ближайшие платежи
// считаются локально пакетом tracker.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
