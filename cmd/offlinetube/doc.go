// Package main hosts the offlinetube CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the foreground daemon (serve),
// background daemon control (start, stop, status over the HTTP API),
// one-shot downloads with progress rendering, format catalog previews,
// keyword search, library maintenance, and configuration scaffolding.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
