package dao

import (
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/deciphernow/contact-registry-server/config"
	"github.com/deciphernow/contact-registry-server/metadata/models"
	"github.com/deciphernow/contact-registry-server/util"
)

// columns consulted for a free text search phrase
var searchDBFields = []string{"u.first_name", "u.last_name", "u.customer_id", "u.phone_number", "a.street", "a.city", "a.country"}

// columns consulted for a name phrase
var nameDBFields = []string{"u.first_name", "u.last_name"}

// GetContacts retrieves a page of contacts flattened with their optional
// address and loyalty relationship, matching any specified filter settings
// on the paging request, and ordered by sort settings
func (dao *DataAccessLayer) GetContacts(pagingRequest PagingRequest) (models.ContactResultset, error) {
	defer util.Time("GetContacts")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("Could not begin transaction", zap.String("err", err.Error()))
		return models.ContactResultset{}, err
	}
	response, err := getContactsInTransaction(tx, dao, pagingRequest)
	if err != nil {
		dao.GetLogger().Error("Error in GetContacts", zap.String("err", err.Error()))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return response, err
}

func getContactsInTransaction(tx *sqlx.Tx, dao *DataAccessLayer, pagingRequest PagingRequest) (models.ContactResultset, error) {
	response := models.ContactResultset{}

	qs, err := beginQuerySession(tx, dao)
	if err != nil {
		response.QueryCount = qs.statements
		return response, qs.checked(err)
	}

	query := queryContacts(dao.Driver)
	query += buildFilterSortAndLimit(dao.Driver, pagingRequest)
	if err := qs.selectStmt(&response.Contacts, query); err != nil {
		qs.end()
		response.QueryCount = qs.statements
		return response, qs.checked(err)
	}
	// Paging stats guidance
	if err := qs.getStmt(&response.TotalRows, queryRowCount(query)); err != nil {
		qs.end()
		response.QueryCount = qs.statements
		return response, qs.checked(err)
	}
	qs.end()
	response.PageNumber = GetSanitizedPageNumber(pagingRequest.PageNumber)
	response.PageSize = GetSanitizedPageSize(pagingRequest.PageSize)
	response.PageRows = len(response.Contacts)
	response.PageCount = GetPageCount(response.TotalRows, response.PageSize)
	response.QueryCount = qs.statements

	// Done
	return response, qs.checked(nil)
}

// column list and joins shared by the queries flattening a contact with its
// optional address and loyalty relationship. Column aliases line up with the
// db tags on models.Contact.
const queryContactBody = `
        u.id
        ,u.first_name
        ,u.last_name
        ,u.gender
        ,u.customer_id
        ,u.phone_number
        ,u.created
        ,u.birthday
        ,u.last_updated
        ,u.address_id
        ,a.street
        ,a.street_number
        ,a.city_code
        ,a.city
        ,a.country
        ,r.id as relationship_id
        ,r.points
        ,r.created as relationship_created
        ,r.last_activity
    from appuser u
        left outer join address a on u.address_id = a.id
        left outer join customer_relationship r on r.appuser_id = u.id `

// queryContacts is the base select for listing operations, asking mysql
// variants to precalculate the unlimited row count while it runs.
func queryContacts(driver string) string {
	calcFoundRows := ``
	if driver == config.DriverMySQL {
		calcFoundRows = `sql_calc_found_rows`
	}
	return `
    select ` + calcFoundRows + queryContactBody
}

func queryRowCount(query string) string {
	lquery := strings.ToLower(query)
	// if precalculated - mysql/mariadb variants
	if strings.Index(lquery, "sql_calc_found_rows") > 0 {
		return "select found_rows()"
	}
	// as a simple count with the ordering and limit stripped. The builder
	// appends a single order by and limit suffix, so the clauses are located
	// from the end of the statement; a filter expression that happens to
	// contain those words sits earlier, inside the where clause, and must
	// survive the rewrite. The limit clause is last, strip it first.
	queryCount := query
	if limitIdx := strings.LastIndex(lquery, "limit "); limitIdx > 0 {
		queryCount = queryCount[:limitIdx]
		lquery = lquery[:limitIdx]
	}
	if orderIdx := strings.LastIndex(lquery, "order by"); orderIdx > 0 {
		queryCount = queryCount[:orderIdx]
		lquery = lquery[:orderIdx]
	}
	if fromIdx := strings.Index(lquery, "from "); fromIdx > 0 {
		queryCount = "select count(0) " + queryCount[fromIdx:]
	}
	return queryCount
}

// buildOrderBy is a function intended for use in building up the base order by
// clause for all list type operations with sanity checks on the fieldnames
// passed in so that we dont just take values straight from the caller/client.
func buildOrderBy(pagingRequest PagingRequest) string {
	sql := ` order by`
	useDefaultSort := true
	if len(pagingRequest.SortSettings) > 0 {
		for _, sortSetting := range pagingRequest.SortSettings {
			dbField := getDBFieldFromPagingRequestField(sortSetting.SortField)
			if len(dbField) == 0 {
				// skip this unrecognized/unhandled field
				continue
			}
			if !useDefaultSort {
				sql += ","
			}
			useDefaultSort = false
			sql += ` ` + dbField
			if sortSetting.SortAscending {
				sql += ` asc`
			} else {
				sql += ` desc`
			}
		}
	}
	if useDefaultSort {
		sql += ` u.created desc`
	}
	return sql
}

func getDBFieldFromPagingRequestField(fieldName string) string {

	dbFields := map[string][]string{}
	dbFields["u.id"] = []string{"id", "contactid"}
	dbFields["u.first_name"] = []string{"firstname", "first_name"}
	dbFields["u.last_name"] = []string{"lastname", "last_name"}
	dbFields["u.gender"] = []string{"gender"}
	dbFields["u.customer_id"] = []string{"customerid", "customer_id"}
	dbFields["u.phone_number"] = []string{"phonenumber", "phone_number", "phone"}
	dbFields["u.created"] = []string{"created", "createddate"}
	dbFields["u.birthday"] = []string{"birthday", "dateofbirth"}
	dbFields["u.last_updated"] = []string{"lastupdated", "last_updated", "modifieddate"}
	dbFields["u.address_id"] = []string{"addressid"}
	dbFields["a.street"] = []string{"street"}
	dbFields["a.street_number"] = []string{"streetnumber", "street_number"}
	dbFields["a.city_code"] = []string{"citycode", "city_code", "postalcode"}
	dbFields["a.city"] = []string{"city"}
	dbFields["a.country"] = []string{"country"}
	dbFields["r.points"] = []string{"points"}
	dbFields["r.created"] = []string{"relationshipcreated", "relationship_created"}
	dbFields["r.last_activity"] = []string{"lastactivity", "last_activity"}

	field := strings.ToLower(strings.TrimSpace(fieldName))

	for dbField, aliases := range dbFields {
		for _, alias := range aliases {
			if field == alias {
				return dbField
			}
		}
	}

	return ""
}

// likeOperators yields the case insensitive like and not like operators for
// the driver in use. MySQL collations make plain like case insensitive while
// PostgreSQL needs ilike.
func likeOperators(driver string) (string, string) {
	if driver == config.DriverPostgres {
		return ` ilike `, ` not ilike `
	}
	return ` like `, ` not like `
}

func buildFilter(driver string, pagingRequest PagingRequest) string {
	out := ``
	like, notlike := likeOperators(driver)
	if len(pagingRequest.FilterSettings) > 0 {
		matchType := " or "
		if pagingRequest.FilterMatchType == "and" {
			matchType = " and "
		}
		for _, filterSetting := range pagingRequest.FilterSettings {
			dbField := getDBFieldFromPagingRequestField(filterSetting.FilterField)
			if len(dbField) == 0 {
				// unrecognized/unhandled field
				continue
			}

			out += matchType
			out += dbField
			switch strings.ToLower(filterSetting.Condition) {
			case "morethan":
				out += ` > '` + SafeString(driver, filterSetting.Expression) + `'`
			case "lessthan":
				out += ` < '` + SafeString(driver, filterSetting.Expression) + `'`
			case "atleast":
				out += ` >= '` + SafeString(driver, filterSetting.Expression) + `'`
			case "atmost":
				out += ` <= '` + SafeString(driver, filterSetting.Expression) + `'`
			case "notbegins":
				out += notlike + `'` + SafeString(driver, filterSetting.Expression) + `%'`
			case "begins":
				out += like + `'` + SafeString(driver, filterSetting.Expression) + `%'`
			case "notends":
				out += notlike + `'%` + SafeString(driver, filterSetting.Expression) + `'`
			case "ends":
				out += like + `'%` + SafeString(driver, filterSetting.Expression) + `'`
			case "notcontains":
				out += notlike + `'%` + SafeString(driver, filterSetting.Expression) + `%'`
			case "contains":
				out += like + `'%` + SafeString(driver, filterSetting.Expression) + `%'`
			case "notequals":
				out += notlike + `'` + SafeString(driver, filterSetting.Expression) + `'`
			default: // "equals":
				out += like + `'` + SafeString(driver, filterSetting.Expression) + `'`
			}
		}
		if len(out) > 0 {
			// Replace only the first condition with the group opener and close out the group
			out = strings.Replace(out, matchType, ` and (`, 1) + `)`
		}
	}
	out += buildPhraseFilter(driver, pagingRequest.Search, searchDBFields)
	out += buildPhraseFilter(driver, pagingRequest.Name, nameDBFields)
	return out
}

// buildPhraseFilter produces an AND attached group of contains matches for a
// phrase over the given columns.
func buildPhraseFilter(driver string, phrase string, dbFields []string) string {
	if len(phrase) == 0 {
		return ``
	}
	like, _ := likeOperators(driver)
	out := ``
	for _, dbField := range dbFields {
		if len(out) > 0 {
			out += ` or `
		}
		out += dbField + like + `'%` + SafeString(driver, phrase) + `%'`
	}
	return ` and (` + out + `)`
}

func buildFilterSortAndLimit(driver string, pagingRequest PagingRequest) string {
	limit := GetLimit(pagingRequest.PageNumber, pagingRequest.PageSize)
	offset := GetOffset(pagingRequest.PageNumber, pagingRequest.PageSize)
	sqlStatementSuffix := ``
	sqlStatementSuffix += buildFilter(driver, pagingRequest)
	// filter groups are emitted conjunctive, the first one opens the where clause
	if strings.HasPrefix(sqlStatementSuffix, ` and `) {
		sqlStatementSuffix = ` where ` + strings.TrimPrefix(sqlStatementSuffix, ` and `)
	}
	sqlStatementSuffix += buildOrderBy(pagingRequest)
	sqlStatementSuffix += ` limit ` + strconv.Itoa(limit) + ` offset ` + strconv.Itoa(offset)
	return sqlStatementSuffix
}

// SafeString escapes an expression for inclusion in a single quoted literal
// built for the driver in use.
func SafeString(driver string, i string) string {
	if driver == config.DriverPostgres {
		return PostgresSafeString(i)
	}
	return MySQLSafeString(i)
}

// PostgresSafeString escapes an expression for use inside a standard
// conforming string literal that may serve as a like pattern. Quotes are
// doubled and the like metacharacters are escaped with a backslash.
func PostgresSafeString(i string) string {
	o := ""
	b := []byte(i)
	for _, v := range b {
		switch v {
		case 0x25: // Percent Symbol
			o += `\%`
		case 0x27: // Single Quote
			o += `''`
		case 0x5c: // Backslash
			o += `\\`
		case 0x5f: // Underscore
			o += `\_`
		default:
			o += string(v)
		}
	}
	return o
}

// MySQLSafeString takes an input string and escapes characters as appropriate
// to make it safe for usage as a string input when building dynamic sql query
// Based upon: https://www.owasp.org/index.php/SQL_Injection_Prevention_Cheat_Sheet#MySQL_Escaping
func MySQLSafeString(i string) string {
	o := ""
	b := []byte(i)
	for _, v := range b {
		switch v {
		case 0x00: // NULL
			o += `\0`
		case 0x08: // Backspace
			o += `\b`
		case 0x09: // Tab
			o += `\t`
		case 0x0a: // Linefeed
			o += `\n`
		case 0x0d: // Carriage Return
			o += `\r`
		case 0x1a: // Substitute Character
			o += `\Z`
		case 0x22: // Double Quote
			o += `\"`
		case 0x25: // Percent Symbol
			o += `\%`
		case 0x27: // Single Quote
			o += `\'`
		case 0x5c: // Backslash
			o += `\\`
		case 0x5f: // Underscore
			o += `\_`
		default:
			o += string(v)
		}

	}
	return o
}
