package utils

import (
	"crypto/md5"
	"encoding/hex"
	"math"
	mRand "math/rand"
	"strconv"
	"strings"
	"time"
)

// GenerateId builds a random record id salted with the event time and the
// identifying strings of the record.
func GenerateId(t time.Time, orgs ...string) string {
	source := mRand.NewSource(time.Now().UnixNano())
	r := mRand.New(source)
	rStr := strconv.FormatInt(r.Int63n(math.MaxInt64), 10)
	timeStr := strconv.FormatInt(t.Unix(), 10)
	str := timeStr + strings.Join(orgs, "_") + rStr
	h := md5.New()
	h.Write([]byte(str))
	return hex.EncodeToString(h.Sum(nil))
}

func CheckIsNotEmptyStr(str string) bool {
	return len(str) > 0
}

func ConvertTimeToStamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
