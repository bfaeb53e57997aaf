// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package templates

import (
	"strings"

	"github.com/spf13/pflag"
)

type FlagGroup struct {
	Name   string
	Prefix []string
}

type FlagGroups []FlagGroup

// SplitFlagSet splits a flag set into multiple flag sets based on the prefix of the flag names.
// A flag goes to the group with the longest matching prefix, on a tie the first group wins.
// The returned flag sets are ordered by the order of the groups, flags that match no group are dropped.
func SplitFlagSet(g FlagGroups, fs *pflag.FlagSet) []*pflag.FlagSet {
	result := make([]*pflag.FlagSet, len(g))
	for i := range g {
		result[i] = pflag.NewFlagSet(g[i].Name, pflag.ContinueOnError)
		result[i].SortFlags = fs.SortFlags
	}

	fs.VisitAll(func(f *pflag.Flag) {
		if i := g.match(f.Name); i >= 0 {
			result[i].AddFlag(f)
		}
	})
	return result
}

func (g FlagGroups) match(name string) int {
	best, bestLen := -1, -1
	for i := range g {
		for _, p := range g[i].Prefix {
			if strings.HasPrefix(name, p) && len(p) > bestLen {
				best, bestLen = i, len(p)
			}
		}
	}
	return best
}
