// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "fmt"

const buildInfoUnknown = "N/A"

// AppBuildInfo is the version stamp linked into the client and server
// binaries with -ldflags. Fields that were not stamped read as "N/A".
type AppBuildInfo struct {
	version string
	date    string
	commit  string
}

func NewAppBuildInfo(version, date, commit string) AppBuildInfo {
	info := AppBuildInfo{version: version, date: date, commit: commit}
	for _, field := range []*string{&info.version, &info.date, &info.commit} {
		if *field == "" {
			*field = buildInfoUnknown
		}
	}
	return info
}

func (a AppBuildInfo) BuildVersion() string { return a.version }

func (a AppBuildInfo) BuildDate() string { return a.date }

func (a AppBuildInfo) BuildCommit() string { return a.commit }

// Known reports whether a version was stamped.
func (a AppBuildInfo) Known() bool {
	return a.version != "" && a.version != buildInfoUnknown
}

func (a AppBuildInfo) String() string {
	return fmt.Sprintf("Build version: %s\nBuild date: %s\nBuild commit: %s", a.version, a.date, a.commit)
}
