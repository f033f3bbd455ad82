package card

import "errors"

var (
	ErrCardNotFound = errors.New("card not found")
	ErrBlankTitle   = errors.New("title must not be blank")
	ErrBlankColumn  = errors.New("column must not be blank")
)
