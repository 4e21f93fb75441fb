/*
Source: https://github.com/kubernetes/sample-controller/tree/master/pkg/signals

Copyright 2017 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package signals

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	klog "k8s.io/klog/v2"
)

var onlyOneShutdownSignalHandler = make(chan struct{})
var onlyOneThreaddumpSignalHandler = make(chan struct{})

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// exit is replaced in tests.
var exit = os.Exit

// SetupShutdownSignalHandler registered for SIGTERM and SIGINT. A context is returned
// which is cancelled on one of these signals. If a second signal is caught, the program
// is terminated with exit code 1.
func SetupShutdownSignalHandler() context.Context {
	close(onlyOneShutdownSignalHandler) // panics when called twice
	c := make(chan os.Signal, 2)
	signal.Notify(c, shutdownSignals...)
	return handleShutdownSignals(context.Background(), c)
}

func handleShutdownSignals(parent context.Context, c <-chan os.Signal) context.Context {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		sig := <-c
		klog.InfoS("Received shutdown signal", "signal", sig)
		cancel()
		sig = <-c
		klog.InfoS("Received second shutdown signal, exiting", "signal", sig)
		klog.Flush()
		exit(1) // second signal. Exit directly.
	}()
	return ctx
}

// SetupThreadDumpSignalHandler registers a handler for SIGQUIT.
// In case a SIGQUIT is received a thread dump is written.
func SetupThreadDumpSignalHandler() {
	close(onlyOneThreaddumpSignalHandler) // panics when called twice
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGQUIT)
		buf := make([]byte, 1*1024*1024)
		for {
			sig := <-sigs
			stacklen := runtime.Stack(buf, true)
			klog.InfoS("Received signal", "signal", sig)
			klog.InfoS("Goroutine dump", "dump", buf[:stacklen])
		}
	}()
}
