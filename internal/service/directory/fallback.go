package directory

// fallbackCompanies keeps resolution working when the bulk company list
// cannot be fetched at startup. Large issuers that dominate Form 4 traffic.
var fallbackCompanies = []Entry{
	{CIK: "320193", Name: "Apple Inc.", Ticker: "AAPL"},
	{CIK: "789019", Name: "Microsoft Corp", Ticker: "MSFT"},
	{CIK: "1652044", Name: "Alphabet Inc.", Ticker: "GOOGL"},
	{CIK: "1018724", Name: "Amazon Com Inc", Ticker: "AMZN"},
	{CIK: "1318605", Name: "Tesla, Inc.", Ticker: "TSLA"},
	{CIK: "1326801", Name: "Meta Platforms, Inc.", Ticker: "META"},
	{CIK: "1045810", Name: "NVIDIA Corp", Ticker: "NVDA"},
	{CIK: "1067983", Name: "Berkshire Hathaway Inc", Ticker: "BRK.B"},
	{CIK: "19617", Name: "JPMorgan Chase & Co", Ticker: "JPM"},
	{CIK: "70858", Name: "Bank of America Corp", Ticker: "BAC"},
	{CIK: "886982", Name: "Goldman Sachs Group Inc", Ticker: "GS"},
	{CIK: "78003", Name: "Pfizer Inc", Ticker: "PFE"},
	{CIK: "200406", Name: "Johnson & Johnson", Ticker: "JNJ"},
	{CIK: "104169", Name: "Walmart Inc.", Ticker: "WMT"},
	{CIK: "93410", Name: "Chevron Corp", Ticker: "CVX"},
	{CIK: "34088", Name: "Exxon Mobil Corp", Ticker: "XOM"},
	{CIK: "51143", Name: "International Business Machines Corp", Ticker: "IBM"},
	{CIK: "77476", Name: "PepsiCo Inc", Ticker: "PEP"},
	{CIK: "21344", Name: "Coca Cola Co", Ticker: "KO"},
	{CIK: "320187", Name: "Nike, Inc.", Ticker: "NKE"},
	{CIK: "354950", Name: "Home Depot, Inc.", Ticker: "HD"},
	{CIK: "731766", Name: "UnitedHealth Group Inc", Ticker: "UNH"},
	{CIK: "1403161", Name: "Visa Inc.", Ticker: "V"},
	{CIK: "1141391", Name: "Mastercard Inc", Ticker: "MA"},
	{CIK: "829224", Name: "Starbucks Corp", Ticker: "SBUX"},
	{CIK: "1065280", Name: "Netflix, Inc.", Ticker: "NFLX"},
	{CIK: "2488", Name: "Advanced Micro Devices, Inc.", Ticker: "AMD"},
	{CIK: "50863", Name: "Intel Corp", Ticker: "INTC"},
	{CIK: "1108524", Name: "Salesforce, Inc.", Ticker: "CRM"},
	{CIK: "909832", Name: "Costco Wholesale Corp", Ticker: "COST"},
}
