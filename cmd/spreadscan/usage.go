package main

const usageTemplate = `NAME:
   {{.Name}} - {{.Usage}}
USAGE:
   {{.HelpName}} {{if .VisibleFlags}}[global options]{{end}} {{if .Commands}}command{{end}}
   {{if .Commands}}
COMMANDS:
   {{range .Commands}}{{join .Names ", "}}{{"\t"}}{{.Usage}}
   {{end}}{{end}}{{if .VisibleFlags}}
GLOBAL OPTIONS:
   {{range .VisibleFlags}}{{.}}
   {{end}}{{end}}{{if .Version}}
VERSION:
   {{.Version}}
   {{end}}
`
