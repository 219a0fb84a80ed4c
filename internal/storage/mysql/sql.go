package mysql

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const businessIDSQL = `SELECT business_id FROM restaurant WHERE id = ?`

// Columns shared by the list and single-review queries. The first placeholder
// is the viewer id used for the liked flag.
// Note: `time` is reserved; keep it quoted everywhere.
const reviewColumns = `
SELECT
  r.id,
  r.restaurant_id,
  r.user_id,
  u.username,
  p.photo,
  r.rating,
  r.rating_safety,
  r.rating_door,
  r.rating_table,
  r.rating_bathroom,
  r.rating_path,
  r.` + "`time`" + `,
  r.content,
  r.image1,
  r.image2,
  r.image3,
  r.hidden,
  EXISTS (SELECT 1 FROM review_likes l WHERE l.review_id = r.id AND l.user_id = ?) AS liked,
  (SELECT COUNT(*) FROM review_likes l2 WHERE l2.review_id = r.id)              AS likes_num
FROM review r
JOIN auth_user u         ON u.id = r.user_id
LEFT JOIN user_profile p ON p.user_id = u.id
`

// Newest first; aligns with idx_review_restaurant_time.
const listInternalReviewsSQL = reviewColumns + `
WHERE r.restaurant_id = ?
ORDER BY r.` + "`time`" + ` DESC, r.id DESC
LIMIT ?`

const getInternalReviewSQL = reviewColumns + `
WHERE r.restaurant_id = ? AND r.id = ?`

// Completed with one placeholder per review id.
const listCommentsPrefix = "SELECT c.review_id, c.id, c.`text`, c.user_id, p.photo, c.hidden\n" +
	"FROM comment c\n" +
	"LEFT JOIN user_profile p ON p.user_id = c.user_id\n" +
	"WHERE c.review_id IN ("

const listCommentsSuffix = ")\nORDER BY c.review_id, c.`time`, c.id"
