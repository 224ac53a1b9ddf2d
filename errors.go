/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Errors reported privately to the connection that caused them.
var (
	ErrMissingField       = errors.New("roomId and hostPassword are required")
	ErrHostAlreadyPresent = errors.New("this room already has a host")
	ErrHostNotConfigured  = errors.New("no host password has been set for this room yet")
	ErrBadHostPassword    = errors.New("incorrect host password")
	ErrNotHost            = errors.New("only the host can start a draw")
	ErrEmptyRoom          = errors.New("there are no participants to draw from")
	ErrNoSuchRoom         = errors.New("that room does not exist")
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}
