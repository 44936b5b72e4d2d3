package exchange

import "github.com/sirupsen/logrus"

var log = logrus.WithField("prefix", "exchange")
