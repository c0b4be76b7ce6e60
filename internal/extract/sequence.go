package extract

// SplitJunction splits a combined junction sequence into its upstream and
// downstream portions. The convention is lower case for the upstream side
// and upper case for the downstream side: the upstream portion is the input
// with its trailing upper-case run stripped, the downstream portion is the
// input with its leading lower-case run stripped. An empty input yields two
// empty sequences, which is not an error: several tools simply omit the
// sequence column.
func SplitJunction(s string) (upstream, downstream string) {
	if s == "" {
		return "", ""
	}

	i := len(s)
	for i > 0 && isUpper(s[i-1]) {
		i--
	}
	upstream = s[:i]

	j := 0
	for j < len(s) && isLower(s[j]) {
		j++
	}
	downstream = s[j:]

	return upstream, downstream
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
