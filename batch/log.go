package batch

import "github.com/sirupsen/logrus"

var log = logrus.WithField("prefix", "batch")
