package services

import "github.com/dmitrijs2005/arkadconsole/internal/common"

var errNoImage = common.NewValidationError("image", "Please select an image.")
