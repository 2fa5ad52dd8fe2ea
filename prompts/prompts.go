package prompts

import _ "embed"

// Embedded prompt files

//go:embed form_discovery.txt
var formDiscovery string

//go:embed row_extraction.txt
var rowExtraction string

//go:embed rfp_details.txt
var rfpDetails string

//go:embed proposal_details.txt
var proposalDetails string

//go:embed dimensions.txt
var dimensions string

//go:embed compare.txt
var compare string

//go:embed consultant.txt
var consultant string

func FormDiscovery() string    { return formDiscovery }
func RowExtraction() string    { return rowExtraction }
func RFPDetails() string       { return rfpDetails }
func ProposalDetails() string  { return proposalDetails }
func Dimensions() string       { return dimensions }
func Compare() string          { return compare }
func Consultant() string       { return consultant }
