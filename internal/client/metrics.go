// Copyright (C) 2026 The stget Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package client

import "github.com/rcrowley/go-metrics"

var (
	metricBytesReceived = metrics.GetOrRegisterCounter("stget.client.bytesReceived", metrics.DefaultRegistry)
	metricRequestsSent  = metrics.GetOrRegisterCounter("stget.client.requestsSent", metrics.DefaultRegistry)
	metricFilesFetched  = metrics.GetOrRegisterCounter("stget.client.filesFetched", metrics.DefaultRegistry)
	metricRunDuration   = metrics.GetOrRegisterTimer("stget.client.run", metrics.DefaultRegistry)
)
