package catalog

import "github.com/sirupsen/logrus"

var log = logrus.WithField("prefix", "catalog")
