/*
 * Copyright 2026 The icmsg Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// demo config.toml key mapping.
type fileConfig struct {
	RegionLen      uint32 `toml:"region_len"`
	PollIntervalMS int    `toml:"poll_interval_ms"`
	SendCount      int    `toml:"send_count"`
	PeriodMS       int    `toml:"period_ms"`
}

type demoConfig struct {
	RegionLen    uint32
	PollInterval time.Duration
	SendCount    int
	Period       time.Duration
}

func defaultDemoConfig() demoConfig {
	return demoConfig{
		RegionLen:    2048,
		PollInterval: time.Millisecond,
		SendCount:    9,
		Period:       200 * time.Millisecond,
	}
}

// loadDemoConfig overlays config.toml values onto the defaults; absent keys
// keep their default.
func loadDemoConfig(path string) (demoConfig, error) {
	cfg := defaultDemoConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return demoConfig{}, fmt.Errorf("load demo config: %w", err)
	}

	if meta.IsDefined("region_len") {
		cfg.RegionLen = raw.RegionLen
	}
	if meta.IsDefined("poll_interval_ms") {
		cfg.PollInterval = time.Duration(raw.PollIntervalMS) * time.Millisecond
	}
	if meta.IsDefined("send_count") {
		cfg.SendCount = raw.SendCount
	}
	if meta.IsDefined("period_ms") {
		cfg.Period = time.Duration(raw.PeriodMS) * time.Millisecond
	}
	return cfg, nil
}
