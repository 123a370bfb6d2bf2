package dbx

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"math"
	"reflect"

	"github.com/pkg/errors"

	"github.com/marcodd23/go-serving-stmt/pkg/logx"
)

// GenerateRandomInt64Id generates a random, non-zero 64-bit ID, used to tag transactions in the logs.
func GenerateRandomInt64Id() int64 {
	var idNum uint64

	for idNum == 0 {
		err := binary.Read(rand.Reader, binary.BigEndian, &idNum)
		if err != nil {
			logx.GetLogger().LogError(context.TODO(), "error generating 64-bit random ID", err)
			continue
		}

		idNum %= uint64(math.MaxInt64)
	}

	return int64(idNum)
}

// DeriveColumnNamesFromTags extracts column names from a struct's tags.
// Only exported fields that carry a non-empty tagKey tag different from "-" are returned, in field order.
//
// Example:
//
//	type Example struct {
//	    ID   int    `db:"id"`
//	    Name string `db:"name"`
//	    Age  int    `db:"age"`
//	}
//	columns, _ := DeriveColumnNamesFromTags(Example{}, "db")
//	// columns would be: []string{"id", "name", "age"}
func DeriveColumnNamesFromTags[T any](entity T, tagKey string) ([]string, error) {
	var columnNames []string

	t := reflect.TypeOf(entity)
	if t == nil {
		return nil, errors.New("expected a struct type")
	}

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil, errors.New("expected a struct type")
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		tag := field.Tag.Get(tagKey)
		if tag == "" || tag == "-" || !field.IsExported() {
			continue
		}

		columnNames = append(columnNames, tag)
	}

	return columnNames, nil
}
